package models

import (
	"time"
)

type Blog struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Slug      string    `bson:"slug" json:"slug"`
	Content   string    `bson:"content" json:"content"`
	Excerpt   string    `bson:"excerpt,omitempty" json:"excerpt,omitempty"`
	Image     string    `bson:"image,omitempty" json:"image,omitempty"`
	Category  string    `bson:"category,omitempty" json:"category,omitempty"`
	Author    string    `bson:"author,omitempty" json:"author,omitempty"`
	Tags      []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	Published bool      `bson:"published" json:"published"`
	Featured  bool      `bson:"featured" json:"featured"`
	Views     int64     `bson:"views" json:"views"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type BlogCategory struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
	Slug string `bson:"slug" json:"slug"`
}
