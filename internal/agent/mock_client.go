package agent

import (
	"context"
	"strings"
	"sync"
)

// MockCall records one request seen by MockClient.
type MockCall struct {
	Prompt     string
	Structured bool
}

// MockResponse is a scripted reply. A non-nil Err is returned instead of Text.
type MockResponse struct {
	Text string
	Err  error
}

// MockClient provides fake AI responses for testing and dry runs. Scripted
// responses are consumed first, in order; after that the canned Cinderella
// essence, story map, and prose are returned by request kind.
type MockClient struct {
	mu        sync.Mutex
	calls     []MockCall
	script    []MockResponse
	responses map[string]string
}

// NewMockClient creates a mock AI client for testing
func NewMockClient() *MockClient {
	return &MockClient{
		responses: map[string]string{
			"essence": `{
  "title": "Cinderella",
  "logline": "A mistreated young woman attends a royal ball with magical help and wins the heart of a prince.",
  "themes": ["kindness rewarded", "transformation", "hope against oppression"],
  "characters": [
    {"name": "Cinderella", "archetype": "Underdog", "role": "Protagonist", "motivation": "escape servitude and be seen for who she is", "core_trait": "gentle resilience"},
    {"name": "Stepmother", "archetype": "Villain", "role": "Antagonist", "motivation": "secure status for her own daughters", "core_trait": "cold ambition"},
    {"name": "Fairy Godmother", "archetype": "Mentor", "role": "Support", "motivation": "reward a kind heart", "core_trait": "benevolent magic"},
    {"name": "Prince", "archetype": "Prize", "role": "Support", "motivation": "find a genuine partner", "core_trait": "earnest devotion"}
  ],
  "plot_beats": [
    {"description": "The heroine is kept in servitude by her new family", "narrative_function": "Setup", "emotional_note": "Oppressed"},
    {"description": "She is forbidden from attending a grand event", "narrative_function": "Conflict", "emotional_note": "Hopeless"},
    {"description": "A mentor grants her a temporary transformation", "narrative_function": "Conflict", "emotional_note": "Wondrous"},
    {"description": "She captivates the prize but must flee before the magic ends", "narrative_function": "Climax", "emotional_note": "Tense"},
    {"description": "A left-behind token reveals her identity and she is recognised", "narrative_function": "Resolution", "emotional_note": "Triumphant"}
  ]
}`,
			"story_map": `{
  "new_title": "The Midnight Cutoff",
  "new_logline": "A scholarship student barred from the national entrance exam gets one night of help and a chance to be recognised.",
  "characters": [
    {"new_name": "Ananya", "original_name": "Cinderella", "role_in_new_world": "Scholarship student", "description": "Studies by streetlight after finishing chores for her relatives"},
    {"new_name": "Mrs. Kapoor", "original_name": "Stepmother", "role_in_new_world": "Guardian and coaching-centre owner", "description": "Pushes her own daughters while hiding Ananya's admit card"},
    {"new_name": "Professor Iyer", "original_name": "Fairy Godmother", "role_in_new_world": "Retired teacher", "description": "Quietly tutors Ananya and secures her a late registration"},
    {"new_name": "Dean Mehra", "original_name": "Prince", "role_in_new_world": "Admissions dean", "description": "Searches for the anonymous topper whose answer sheet impressed him"}
  ],
  "setting": {"location": "A coaching town before the national entrance exam", "rules": "Rank decides destiny and registration closes at midnight"},
  "plot_outline": [
    "Scene 1: Ananya cooks and cleans for the Kapoors while her cousins attend coaching",
    "Scene 2: Mrs. Kapoor hides the admit card the night before registration closes",
    "Scene 3: Professor Iyer arrives with a borrowed laptop and a plan",
    "Scene 4: Ananya sits the exam but must leave before her name is recorded",
    "Scene 5: Dean Mehra traces the unsigned answer sheet back to her"
  ]
}`,
			"prose": `The Midnight Cutoff

Ananya learned the sound of the Kapoor house before she learned its rules. The pressure cooker hissed at six, the cousins' alarms sang at seven, and the coaching-centre van honked at eight while she stood at the sink with wet hands and a formula chart taped to the window above it.

When the registration deadline came, it arrived as a rumour and left as a locked drawer. Professor Iyer found her on the temple steps with a chemistry book and no admit card, and he did not ask questions. He opened a borrowed laptop, counted the minutes until midnight, and told her to type.

Weeks later, Dean Mehra held up an answer sheet with no name on it and asked the town who had written it. Ananya raised her hand.`,
		},
	}
}

// Enqueue appends scripted responses. They are served before canned ones.
func (m *MockClient) Enqueue(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, responses...)
}

// SetResponse overrides the canned reply for "essence", "story_map" or "prose".
func (m *MockClient) SetResponse(kind, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[kind] = text
}

// Complete returns a mock response
func (m *MockClient) Complete(ctx context.Context, prompt string, structured bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Prompt: prompt, Structured: structured})

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		if next.Err != nil {
			return "", next.Err
		}
		return next.Text, nil
	}

	return m.responses[responseKind(prompt, structured)], nil
}

// Calls returns a copy of every request received so far.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockClient) Model() string { return "mock" }

func responseKind(prompt string, structured bool) string {
	switch {
	case !structured:
		return "prose"
	case strings.Contains(prompt, "ORIGINAL STORY ELEMENTS"):
		return "story_map"
	default:
		return "essence"
	}
}
