package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const imageBase = "http://localhost:8080"

func TestNormalizeImageRef_EmptyRefGetsBasePath(t *testing.T) {
	got := NormalizeImageRef(imageBase, "")
	assert.Equal(t, "http://localhost:8080/images/book/", got)
}

func TestNormalizeImageRef_Idempotent(t *testing.T) {
	once := NormalizeImageRef(imageBase, "")
	twice := NormalizeImageRef(imageBase, once)
	assert.Equal(t, once, twice)
}

func TestNormalizeImageRef_KeepsNonEmptyRef(t *testing.T) {
	got := NormalizeImageRef(imageBase, "covers/42.jpg")
	assert.Equal(t, "covers/42.jpg", got)
}

func TestNewBook_NormalizesImageAndPages(t *testing.T) {
	b := NewBook(imageBase, Book{ID: "b1", Title: "Dune", NumberOfPages: -3})
	assert.Equal(t, "http://localhost:8080/images/book/", b.Image)
	assert.Equal(t, 0, b.NumberOfPages)
}

func TestDisplayPublishDate(t *testing.T) {
	var b Book
	assert.Equal(t, PublishDateUnknown, b.DisplayPublishDate())

	empty := ""
	b.PublishDate = &empty
	assert.Equal(t, PublishDateUnknown, b.DisplayPublishDate())

	date := "1965-08-01"
	b.PublishDate = &date
	assert.Equal(t, "1965-08-01", b.DisplayPublishDate())
}

func TestUser_CardAccessors(t *testing.T) {
	var u User
	assert.False(t, u.HasCard())
	assert.Equal(t, "", u.CardNumber())

	u.LibraryCard = &LibraryCard{ID: "card-7"}
	assert.True(t, u.HasCard())
	assert.Equal(t, "card-7", u.CardNumber())
}
