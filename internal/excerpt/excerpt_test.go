package excerpt

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hoanghai1803/spillcheck/internal/models"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		bodyHTML string
		want     string
	}{
		{
			name:     "html preferred",
			body:     "**ignored**",
			bodyHTML: `<div class="md"><p>First   paragraph with <a href="https://x.y">a link</a>.</p><p>Second &amp; last.</p></div>`,
			want:     "First paragraph with a link.\nSecond & last.",
		},
		{
			name: "markdown links and emphasis",
			body: "I saw **them** at [the club](https://example.com) and *wow*.",
			want: "I saw them at the club and wow.",
		},
		{
			name: "quote and heading markers",
			body: "# Update\n> she said no\n\n&gt; quoted again",
			want: "Update\nshe said no\nquoted again",
		},
		{
			name: "entities unescaped",
			body: "Tom &amp; Jerry &quot;split&quot;",
			want: `Tom & Jerry "split"`,
		},
		{
			name: "empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.body, tt.bodyHTML); got != tt.want {
				t.Errorf("PlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSentences(t *testing.T) {
	text := "So this happened at the wedding last night. Nobody expected it!\n" +
		"Edit: lol\nWho invited the ex anyway?! I still cannot believe it"

	want := []string{
		"So this happened at the wedding last night.",
		"Nobody expected it!",
		"Who invited the ex anyway?!",
		"I still cannot believe it",
	}
	// "Nobody expected it!" is under the minimum length.
	want = append(want[:1], want[2:]...)

	if diff := cmp.Diff(want, Sentences(text)); diff != "" {
		t.Errorf("Sentences() mismatch (-want +got):\n%s", diff)
	}
}

func TestSentences_DecimalsStayTogether(t *testing.T) {
	got := Sentences("The settlement was reportedly 2.5 million dollars in total.")
	if len(got) != 1 {
		t.Errorf("Sentences() = %q, want one sentence", got)
	}
}

func TestSentences_DropsNonLetters(t *testing.T) {
	if got := Sentences("1234567890 1234567890 1234567890."); len(got) != 0 {
		t.Errorf("Sentences() = %q, want none", got)
	}
}

func TestGossipScore_PrefersGossip(t *testing.T) {
	tokens := []string{"zendaya"}
	keywords := []string{"drama", "rumor"}

	plain := GossipScore("The weather in the city was mild for most of the day.", tokens, keywords)
	gossip := GossipScore(`Apparently my cousin heard Zendaya say "it's over" after the drama!`, tokens, keywords)

	if gossip <= plain {
		t.Errorf("gossip score %f should exceed plain score %f", gossip, plain)
	}
}

func TestGossipScore_LengthSweetSpot(t *testing.T) {
	short := GossipScore("This is a short one.", nil, nil)
	mid := GossipScore(strings.Repeat("word ", 15)+"end.", nil, nil)
	long := GossipScore(strings.Repeat("word ", 60)+"end.", nil, nil)

	if mid <= short || mid <= long {
		t.Errorf("sweet spot not favoured: short=%f mid=%f long=%f", short, mid, long)
	}
}

func TestBuild_PicksBestSentencesInOrder(t *testing.T) {
	post := models.RankedPost{RawPost: models.RawPost{
		Title: "Zendaya and Tom at the premiere",
		Body: "We got there around eight in the evening. " +
			"Apparently Zendaya stormed out after a huge argument with the director! " +
			"Parking was fine and the snacks were okay overall. " +
			"My friend who works security said the drama started backstage.",
	}}

	ex := Build(post, []string{"zendaya"}, Options{
		MinSentences: 2,
		MaxSentences: 3,
		MaxChars:     700,
		Keywords:     []string{"drama", "argument"},
	})

	want := "Zendaya and Tom at the premiere. " +
		"Apparently Zendaya stormed out after a huge argument with the director! " +
		"My friend who works security said the drama started backstage."
	if ex.Text != want {
		t.Errorf("Text = %q\nwant  %q", ex.Text, want)
	}
	if ex.SentenceCount != 3 {
		t.Errorf("SentenceCount = %d, want 3", ex.SentenceCount)
	}
	if !ex.SubjectMatch {
		t.Error("SubjectMatch = false, want true")
	}
	if ex.WordCount != CountWords(want) {
		t.Errorf("WordCount = %d, want %d", ex.WordCount, CountWords(want))
	}
}

func TestBuild_RespectsMaxChars(t *testing.T) {
	post := models.RankedPost{RawPost: models.RawPost{
		Title: "Long thread",
		Body:  strings.Repeat("This sentence is about a celebrity feud that went viral. ", 30),
	}}

	ex := Build(post, []string{"celebrity"}, Options{MinSentences: 2, MaxSentences: 10, MaxChars: 200})
	if len(ex.Text) > 200+len("…") {
		t.Errorf("len(Text) = %d, want <= 200", len(ex.Text))
	}
}

func TestBuild_UsesCommentsWithoutBody(t *testing.T) {
	post := models.RankedPost{
		RawPost: models.RawPost{Title: "Rihanna spotted in Paris"},
		TopComments: []string{
			"I was there and she was with someone who was definitely not her manager.",
			"lol",
		},
	}

	ex := Build(post, []string{"rihanna"}, Options{MinSentences: 2, MaxSentences: 3, MaxChars: 500})
	if !strings.Contains(ex.Text, "definitely not her manager") {
		t.Errorf("Text = %q, want comment sentence included", ex.Text)
	}
	if !strings.HasPrefix(ex.Text, "Rihanna spotted in Paris.") {
		t.Errorf("Text = %q, want title lead", ex.Text)
	}
}

func TestBuild_GossipyCommentBeatsBlandBody(t *testing.T) {
	post := models.RankedPost{
		RawPost: models.RawPost{
			Title: "Concert night",
			Body:  "We got to the stadium around six in the evening. The parking lot was mostly full already. Our seats were in the upper section.",
		},
		TopComments: []string{
			"Apparently my cousin heard the singer had a massive feud and drama with the opening act backstage.",
		},
	}

	ex := Build(post, []string{"singer"}, Options{
		MinSentences: 2,
		MaxSentences: 3,
		MaxChars:     500,
		Keywords:     []string{"feud", "drama"},
	})
	if !strings.Contains(ex.Text, "massive feud and drama") {
		t.Errorf("Text = %q, want the gossipy comment sentence", ex.Text)
	}
	if !ex.SubjectMatch {
		t.Error("SubjectMatch = false, want true from the comment")
	}
}

func TestBuild_TitleOnlyRespectsMaxChars(t *testing.T) {
	title := strings.Repeat("Taylor Swift and Travis Kelce ", 6)
	post := models.RankedPost{RawPost: models.RawPost{Title: title}}

	ex := Build(post, []string{"taylor"}, Options{MaxChars: 100})
	if len(ex.Text) > 100 {
		t.Errorf("len(Text) = %d, want at most 100: %q", len(ex.Text), ex.Text)
	}
	if !strings.HasSuffix(ex.Text, "…") {
		t.Errorf("Text = %q, want an ellipsis", ex.Text)
	}
}

func TestBuild_TitleOnly(t *testing.T) {
	post := models.RankedPost{RawPost: models.RawPost{Title: "Beyonce surprise album?"}}

	ex := Build(post, []string{"taylor"}, Options{})
	if ex.Text != "Beyonce surprise album?" {
		t.Errorf("Text = %q, want title", ex.Text)
	}
	if ex.SubjectMatch {
		t.Error("SubjectMatch = true, want false")
	}
	if ex.SentenceCount != 1 {
		t.Errorf("SentenceCount = %d, want 1", ex.SentenceCount)
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"hello", 1},
		{"hello, world!", 2},
		{"don't stop", 2},
		{"well-known fact", 3},
		{"  spaced   out  ", 2},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CountWords(tt.input); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncateChars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "fits", input: "short text", max: 20, want: "short text"},
		{name: "cut at word", input: "one two three four", max: 10, want: "one two…"},
		{name: "no limit", input: "anything", max: 0, want: "anything"},
		{name: "space right at the limit", input: "abcdefg hij", max: 10, want: "abcdefg…"},
		{name: "single long word", input: "abcdefghijkl", max: 8, want: "abcde…"},
		{name: "multibyte boundary", input: "ééééééé", max: 8, want: "éé…"},
		{name: "no room for ellipsis", input: "abcdef", max: 2, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateChars(tt.input, tt.max)
			if got != tt.want {
				t.Errorf("truncateChars(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
			if tt.max > 0 && len(got) > tt.max {
				t.Errorf("len(truncateChars(%q, %d)) = %d, over the limit", tt.input, tt.max, len(got))
			}
		})
	}
}
