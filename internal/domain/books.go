package domain

// Book is one of the 66 books of the Protestant canon.
type Book struct {
	Number   int
	Name     string
	Chapters int
	Aliases  []string
}

// Books lists the canon in order; Number is the index in this slice.
var Books = []Book{
	{0, "Genesis", 50, []string{"gen", "ge", "gn"}},
	{1, "Exodus", 40, []string{"exod", "exo", "ex"}},
	{2, "Leviticus", 27, []string{"lev", "le", "lv"}},
	{3, "Numbers", 36, []string{"num", "nu", "nm"}},
	{4, "Deuteronomy", 34, []string{"deut", "deu", "dt"}},
	{5, "Joshua", 24, []string{"josh", "jos"}},
	{6, "Judges", 21, []string{"judg", "jdg"}},
	{7, "Ruth", 4, []string{"ru", "rth"}},
	{8, "1 Samuel", 31, []string{"1sam", "1sa", "1sm"}},
	{9, "2 Samuel", 24, []string{"2sam", "2sa", "2sm"}},
	{10, "1 Kings", 22, []string{"1kgs", "1ki", "1kin"}},
	{11, "2 Kings", 25, []string{"2kgs", "2ki", "2kin"}},
	{12, "1 Chronicles", 29, []string{"1chr", "1ch", "1chron"}},
	{13, "2 Chronicles", 36, []string{"2chr", "2ch", "2chron"}},
	{14, "Ezra", 10, []string{"ezr"}},
	{15, "Nehemiah", 13, []string{"neh", "ne"}},
	{16, "Esther", 10, []string{"esth", "est", "es"}},
	{17, "Job", 42, []string{"jb"}},
	{18, "Psalm", 150, []string{"psalms", "ps", "psa", "pss"}},
	{19, "Proverbs", 31, []string{"prov", "pro", "pr", "prv"}},
	{20, "Ecclesiastes", 12, []string{"eccl", "ecc", "qoh"}},
	{21, "Song of Songs", 8, []string{"song", "sos", "songofsolomon", "canticles"}},
	{22, "Isaiah", 66, []string{"isa", "is"}},
	{23, "Jeremiah", 52, []string{"jer", "je"}},
	{24, "Lamentations", 5, []string{"lam", "la"}},
	{25, "Ezekiel", 48, []string{"ezek", "eze", "ezk"}},
	{26, "Daniel", 12, []string{"dan", "da", "dn"}},
	{27, "Hosea", 14, []string{"hos", "ho"}},
	{28, "Joel", 3, []string{"jl"}},
	{29, "Amos", 9, []string{"am"}},
	{30, "Obadiah", 1, []string{"obad", "ob"}},
	{31, "Jonah", 4, []string{"jon", "jnh"}},
	{32, "Micah", 7, []string{"mic", "mc"}},
	{33, "Nahum", 3, []string{"nah", "na"}},
	{34, "Habakkuk", 3, []string{"hab", "hb"}},
	{35, "Zephaniah", 3, []string{"zeph", "zep", "zp"}},
	{36, "Haggai", 2, []string{"hag", "hg"}},
	{37, "Zechariah", 14, []string{"zech", "zec", "zc"}},
	{38, "Malachi", 4, []string{"mal", "ml"}},
	{39, "Matthew", 28, []string{"matt", "mat", "mt"}},
	{40, "Mark", 16, []string{"mrk", "mk", "mr"}},
	{41, "Luke", 24, []string{"luk", "lk"}},
	{42, "John", 21, []string{"jhn", "jn"}},
	{43, "Acts", 28, []string{"act", "ac"}},
	{44, "Romans", 16, []string{"rom", "ro", "rm"}},
	{45, "1 Corinthians", 16, []string{"1cor", "1co"}},
	{46, "2 Corinthians", 13, []string{"2cor", "2co"}},
	{47, "Galatians", 6, []string{"gal", "ga"}},
	{48, "Ephesians", 6, []string{"eph", "ephes"}},
	{49, "Philippians", 4, []string{"phil", "php", "pp"}},
	{50, "Colossians", 4, []string{"col", "co"}},
	{51, "1 Thessalonians", 5, []string{"1thess", "1th", "1thes"}},
	{52, "2 Thessalonians", 3, []string{"2thess", "2th", "2thes"}},
	{53, "1 Timothy", 6, []string{"1tim", "1ti"}},
	{54, "2 Timothy", 4, []string{"2tim", "2ti"}},
	{55, "Titus", 3, []string{"tit", "ti"}},
	{56, "Philemon", 1, []string{"phlm", "philem", "phm"}},
	{57, "Hebrews", 13, []string{"heb"}},
	{58, "James", 5, []string{"jas", "jm"}},
	{59, "1 Peter", 5, []string{"1pet", "1pe", "1pt"}},
	{60, "2 Peter", 3, []string{"2pet", "2pe", "2pt"}},
	{61, "1 John", 5, []string{"1jn", "1jhn", "1jo"}},
	{62, "2 John", 1, []string{"2jn", "2jhn", "2jo"}},
	{63, "3 John", 1, []string{"3jn", "3jhn", "3jo"}},
	{64, "Jude", 1, []string{"jud", "jd"}},
	{65, "Revelation", 22, []string{"rev", "re", "revelations", "apocalypse"}},
}

// bookIndex maps every normalized name and alias to a book number.
var bookIndex = buildBookIndex()

func buildBookIndex() map[string]int {
	idx := make(map[string]int, len(Books)*4)
	for _, b := range Books {
		idx[normalizeBookName(b.Name)] = b.Number
		for _, a := range b.Aliases {
			idx[normalizeBookName(a)] = b.Number
		}
	}
	return idx
}

// LookupBook finds a book by name, alias or unambiguous prefix of its full name.
func LookupBook(name string) (Book, bool) {
	key := normalizeBookName(name)
	if key == "" {
		return Book{}, false
	}
	if n, ok := bookIndex[key]; ok {
		return Books[n], true
	}

	found := -1
	for _, b := range Books {
		full := normalizeBookName(b.Name)
		if len(key) >= 3 && len(key) < len(full) && full[:len(key)] == key {
			if found >= 0 {
				return Book{}, false
			}
			found = b.Number
		}
	}
	if found < 0 {
		return Book{}, false
	}
	return Books[found], true
}

func normalizeBookName(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'):
			out = append(out, c)
		}
	}
	return string(out)
}
