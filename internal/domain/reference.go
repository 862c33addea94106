package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// referencePattern splits "1 Cor 13:4-7" into book, chapter, verse and range end.
var referencePattern = regexp.MustCompile(
	`^\s*([1-3]?\s*[A-Za-z][A-Za-z .]*?)\s*(\d+)(?:\s*:\s*(\d+))?(?:\s*[-–]\s*(\d+)(?:\s*:\s*(\d+))?)?\s*$`,
)

// ParsedReference is a validated reference to a verse, verse range or whole chapters.
// StartVerse and EndVerse are 0 for whole-chapter references.
type ParsedReference struct {
	BookNumber   int `json:"book_number"`
	StartChapter int `json:"start_chapter"`
	StartVerse   int `json:"start_verse"`
	EndChapter   int `json:"end_chapter"`
	EndVerse     int `json:"end_verse"`
}

// ParseReference parses references such as "John 3:16", "Gen 1:30-2:3",
// "Psalm 23" and "Jude 3".
func ParseReference(input string) (ParsedReference, error) {
	m := referencePattern.FindStringSubmatch(input)
	if m == nil {
		return ParsedReference{}, fmt.Errorf("%w: %q", ErrInvalidReference, input)
	}

	book, ok := LookupBook(m[1])
	if !ok {
		return ParsedReference{}, fmt.Errorf("%w: unknown book %q", ErrInvalidReference, strings.TrimSpace(m[1]))
	}

	nums := make([]int, 4)
	for i, s := range m[2:] {
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return ParsedReference{}, fmt.Errorf("%w: %q", ErrInvalidReference, input)
		}
		nums[i] = n
	}
	chapter, verse, rangeA, rangeB := nums[0], nums[1], nums[2], nums[3]

	ref := ParsedReference{BookNumber: book.Number}
	switch {
	case book.Chapters == 1 && verse == 0:
		// "Jude 3" and "Jude 3-5" count verses, not chapters.
		ref.StartChapter, ref.StartVerse = 1, chapter
		ref.EndChapter, ref.EndVerse = 1, chapter
		if rangeA != 0 {
			if rangeB != 0 {
				return ParsedReference{}, fmt.Errorf("%w: %q", ErrInvalidReference, input)
			}
			ref.EndVerse = rangeA
		}
	case verse == 0:
		ref.StartChapter, ref.EndChapter = chapter, chapter
		if rangeA != 0 {
			if rangeB != 0 {
				// "Psalm 23-24:3" mixes whole chapters with verses.
				return ParsedReference{}, fmt.Errorf("%w: %q", ErrInvalidReference, input)
			}
			ref.EndChapter = rangeA
		}
	default:
		ref.StartChapter, ref.StartVerse = chapter, verse
		ref.EndChapter, ref.EndVerse = chapter, verse
		switch {
		case rangeB != 0:
			ref.EndChapter, ref.EndVerse = rangeA, rangeB
		case rangeA != 0:
			ref.EndVerse = rangeA
		}
	}

	if err := ref.validate(book); err != nil {
		return ParsedReference{}, fmt.Errorf("%w: %q", err, input)
	}
	return ref, nil
}

func (r ParsedReference) validate(book Book) error {
	if r.StartChapter < 1 || r.EndChapter > book.Chapters {
		return fmt.Errorf("%w: %s has %d chapters", ErrInvalidReference, book.Name, book.Chapters)
	}
	if r.EndChapter < r.StartChapter {
		return fmt.Errorf("%w: range ends before it starts", ErrInvalidReference)
	}
	if r.EndChapter == r.StartChapter && r.EndVerse < r.StartVerse {
		return fmt.Errorf("%w: range ends before it starts", ErrInvalidReference)
	}
	return nil
}

// Book returns the book the reference points into.
func (r ParsedReference) Book() Book {
	return Books[r.BookNumber]
}

// IsWholeChapter reports whether the reference covers complete chapters.
func (r ParsedReference) IsWholeChapter() bool {
	return r.StartVerse == 0
}

// IsSingleVerse reports whether the reference is exactly one verse.
func (r ParsedReference) IsSingleVerse() bool {
	return r.StartVerse != 0 && r.StartChapter == r.EndChapter && r.StartVerse == r.EndVerse
}

// Canonical renders the reference in its standard English form.
func (r ParsedReference) Canonical() string {
	name := r.Book().Name
	single := r.Book().Chapters == 1
	switch {
	case r.IsWholeChapter() && r.StartChapter == r.EndChapter:
		return fmt.Sprintf("%s %d", name, r.StartChapter)
	case r.IsWholeChapter():
		return fmt.Sprintf("%s %d-%d", name, r.StartChapter, r.EndChapter)
	case r.IsSingleVerse() && single:
		return fmt.Sprintf("%s %d", name, r.StartVerse)
	case r.IsSingleVerse():
		return fmt.Sprintf("%s %d:%d", name, r.StartChapter, r.StartVerse)
	case single:
		return fmt.Sprintf("%s %d-%d", name, r.StartVerse, r.EndVerse)
	case r.StartChapter == r.EndChapter:
		return fmt.Sprintf("%s %d:%d-%d", name, r.StartChapter, r.StartVerse, r.EndVerse)
	default:
		return fmt.Sprintf("%s %d:%d-%d:%d", name, r.StartChapter, r.StartVerse, r.EndChapter, r.EndVerse)
	}
}

// String implements fmt.Stringer.
func (r ParsedReference) String() string {
	return r.Canonical()
}

// Bounds returns the inclusive (chapter, verse) range covered by the reference.
// Whole chapters run from verse 0 to MaxVerseNumber.
func (r ParsedReference) Bounds() (startChapter, startVerse, endChapter, endVerse int) {
	if r.IsWholeChapter() {
		return r.StartChapter, 0, r.EndChapter, MaxVerseNumber
	}
	return r.StartChapter, r.StartVerse, r.EndChapter, r.EndVerse
}

// MaxVerseNumber is larger than any verse number in any chapter (Psalm 119 has 176).
const MaxVerseNumber = 999
