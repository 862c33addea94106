package domain

import (
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// TextVersion is a Bible translation, e.g. "KJV".
type TextVersion struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Slug         string    `json:"slug" db:"slug"`
	ShortName    string    `json:"short_name" db:"short_name"`
	FullName     string    `json:"full_name" db:"full_name"`
	LanguageCode string    `json:"language_code" db:"language_code"`
	Public       bool      `json:"public" db:"public"`
}

// Language returns the parsed language of the translation.
func (v *TextVersion) Language() language.Tag {
	tag, err := language.Parse(v.LanguageCode)
	if err != nil {
		return language.Und
	}
	return tag
}

// Verse is the text of a single verse in one version.
type Verse struct {
	VersionID          uuid.UUID `json:"version_id" db:"version_id"`
	LocalizedReference string    `json:"reference" db:"localized_reference"`
	Text               string    `json:"text" db:"text"`
	BookNumber         int       `json:"book_number" db:"book_number"`
	ChapterNumber      int       `json:"chapter_number" db:"chapter_number"`
	VerseNumber        int       `json:"verse_number" db:"verse_number"`
	BibleVerseNumber   int       `json:"bible_verse_number" db:"bible_verse_number"`
	Missing            bool      `json:"-" db:"missing"`
}

// Reference returns the single-verse reference of v.
func (v *Verse) Reference() ParsedReference {
	return ParsedReference{
		BookNumber:   v.BookNumber,
		StartChapter: v.ChapterNumber,
		StartVerse:   v.VerseNumber,
		EndChapter:   v.ChapterNumber,
		EndVerse:     v.VerseNumber,
	}
}

// WordCount counts whitespace separated words in the verse text.
func (v *Verse) WordCount() int {
	return WordCount(v.Text)
}
