package ai

import (
	"fmt"
	"regexp"
	"strings"
)

// creativeTemperature keeps fabrications varied without going off topic.
const creativeTemperature = 0.9

const fabricateSystemPrompt = `You write short posts for a game where players guess which of two forum posts is real. Write ONE invented post that sounds like a real person sharing gossip on a discussion forum: casual, first-hand or second-hand, specific but unverifiable. Match the reference post's tone, punctuation habits and length closely. Never copy sentences from the reference. Never name real private individuals. Do not add a title, a label, quotation marks around the whole post, hashtags or any explanation. Output only the post text.`

// FabricatePrompt builds the system and user prompts for the fabrication
// operation.
func FabricatePrompt(req FabricationRequest) (systemPrompt string, userPrompt string) {
	systemPrompt = fabricateSystemPrompt

	words := req.TargetWords
	if words <= 0 {
		words = 60
	}
	sentences := req.Sentences
	if sentences <= 0 {
		sentences = 3
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Length: about %d words in %d sentences.\n", words, sentences)
	b.WriteString("Reference post (match its style, do not reuse its content):\n")
	b.WriteString(req.Reference)

	userPrompt = b.String()
	return systemPrompt, userPrompt
}

var labelPattern = regexp.MustCompile(`(?i)^(fake\s+)?(story|post|answer|output|here'?s?( is)?( the| a| your)?( fake| invented)?( story| post)?)\s*:\s*`)

// cleanStory strips code fences, leading labels like "Story:" and quotes
// wrapping the whole text. This handles the common ways models decorate
// plain-text answers.
func cleanStory(s string) string {
	s = strings.TrimSpace(s)

	if after, found := strings.CutPrefix(s, "```"); found {
		if nl := strings.IndexByte(after, '\n'); nl >= 0 && !strings.Contains(after[:nl], " ") {
			after = after[nl+1:] // drop a language tag such as ```text
		}
		if idx := strings.LastIndex(after, "```"); idx >= 0 {
			after = after[:idx]
		}
		s = strings.TrimSpace(after)
	}

	s = strings.TrimSpace(labelPattern.ReplaceAllString(s, ""))

	for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}} {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) &&
			!strings.Contains(s[len(q[0]):len(s)-len(q[1])], q[1]) {
			s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
		}
	}

	return strings.Join(strings.Fields(s), " ")
}
