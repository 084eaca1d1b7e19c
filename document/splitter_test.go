package document

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortText(t *testing.T) {
	s := NewSplitter(500, 50)
	chunks := s.Split("short text")
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Fatalf("chunks = %v", chunks)
	}
}

func TestSplitEmpty(t *testing.T) {
	s := NewSplitter(500, 50)
	if chunks := s.Split("   "); len(chunks) != 0 {
		t.Errorf("blank text produced %d chunks", len(chunks))
	}
}

func TestSplitOverlap(t *testing.T) {
	words := make([]string, 100)
	for i := range words {
		words[i] = "word" + string(rune('a'+i%26))
	}
	text := strings.Join(words, " ")

	s := NewSplitter(30, 10)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}

	// Consecutive chunks share their boundary words.
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		tail := prevWords[len(prevWords)-1]
		if !strings.Contains(" "+chunks[i]+" ", " "+tail+" ") {
			t.Errorf("chunk %d does not overlap with its predecessor", i)
		}
	}

	// Every word survives splitting.
	joined := " " + strings.Join(chunks, " ") + " "
	for _, w := range words {
		if !strings.Contains(joined, " "+w+" ") {
			t.Fatalf("word %q lost in splitting", w)
		}
	}
}

func TestSplitCyrillicText(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("жизнь прекрасна и удивительна ", 60))

	s := NewSplitter(500, 50)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d is not valid UTF-8: %q", i, c)
		}
	}

	// Every word survives intact; a mid-rune cut would corrupt words at
	// chunk seams.
	joined := " " + strings.Join(chunks, " ") + " "
	for _, w := range []string{"жизнь", "прекрасна", "и", "удивительна"} {
		if !strings.Contains(joined, " "+w+" ") {
			t.Errorf("word %q corrupted by splitting", w)
		}
	}
}

func TestSplitSpacelessCJK(t *testing.T) {
	text := strings.Repeat("記憶は思い出の器である", 100)

	s := NewSplitter(100, 10)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d is not valid UTF-8: %q", i, c)
		}
		// No spaces to break at: windows run at exactly the chunk size
		// in runes, not bytes.
		if n := utf8.RuneCountInString(c); n > 100 {
			t.Errorf("chunk %d has %d runes, want <= 100", i, n)
		}
	}
}

func TestSplitBadOverlapFallsBack(t *testing.T) {
	// Overlap >= size would never advance; the splitter falls back to the
	// defaults instead.
	s := NewSplitter(10, 20)
	chunks := s.Split("one two three")
	if len(chunks) == 0 {
		t.Fatal("no chunks")
	}
}
