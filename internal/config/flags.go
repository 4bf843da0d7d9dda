package config

import (
	"strconv"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// FlagSource answers static boolean feature flags.
type FlagSource interface {
	Bool(key string, fallback bool) bool
}

// NewFlagSource uses LaunchDarkly when LD_SDK_KEY is configured and the
// environment otherwise. The returned func releases the client.
func NewFlagSource(lookup Lookup) (FlagSource, func(), error) {
	env := EnvFlags{Lookup: lookup}
	sdkKey, _ := lookup("LD_SDK_KEY")
	if strings.TrimSpace(sdkKey) == "" {
		utils.Logger.Info("LD_SDK_KEY not set; reading feature flags from the environment")
		return env, func() {}, nil
	}

	client, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		return nil, func() {}, err
	}
	if !client.Initialized() {
		_ = client.Close()
		utils.Logger.Warn("LaunchDarkly client failed to initialize; falling back to environment flags")
		return env, func() {}, nil
	}

	src := &ldFlags{
		client:   client,
		context:  ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey),
		fallback: env,
	}
	return src, func() { _ = client.Close() }, nil
}

type ldFlags struct {
	client   *ld.LDClient
	context  ldcontext.Context
	fallback FlagSource
}

func (f *ldFlags) Bool(key string, fallback bool) bool {
	def := f.fallback.Bool(key, fallback)
	v, err := f.client.BoolVariation(key, f.context, def)
	if err != nil {
		utils.Logger.WithError(err).Warnf("Error retrieving %s flag; using %t", key, def)
		return def
	}
	return v
}

// EnvFlags reads flag "force_https" from env var FORCE_HTTPS.
type EnvFlags struct {
	Lookup Lookup
}

func (e EnvFlags) Bool(key string, fallback bool) bool {
	raw, ok := e.Lookup(strings.ToUpper(key))
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		utils.Logger.Warnf("Ignoring non-boolean %s=%q", strings.ToUpper(key), raw)
		return fallback
	}
	return v
}
