package repositories

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

/*
RunInTransaction executes fn inside a multi-document transaction. The driver
retries fn on TransientTransactionError and retries the commit on
UnknownTransactionCommitResult, so fn must be safe to run more than once.
*/
func RunInTransaction(
	ctx context.Context,
	client *mongo.Client,
	fn func(sc mongo.SessionContext) error,
) error {
	sess, err := client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}

// safeKey reports whether s can be used as a single path element of a
// dotted field name ("unread_count.<s>").
func safeKey(s string) bool {
	return s != "" && !strings.ContainsAny(s, ".$")
}
