package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Text string
	Err  error
}

// MockProvider returns canned responses in FIFO order and records requests.
// Once the queue is drained it keeps answering with Fallback, if set.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Fallback  string
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		if m.Fallback != "" {
			return &Response{Text: m.Fallback, Model: "mock", StopReason: "end"}, nil
		}
		return nil, &ErrProviderUnavailable{}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Response{Text: resp.Text, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// DemoQuizText is what the "mock" provider answers with once its queue is
// empty, so the service can run end to end without credentials.
const DemoQuizText = `Question 1: Which gas do plants absorb from the atmosphere?
A) Oxygen
B) Carbon dioxide
C) Nitrogen
D) Helium
Correct Answer: B

Question 2: How many continents are there on Earth?
A) Five
B) Six
C) Seven
D) Eight
Correct Answer: C

Question 3: What is the boiling point of water at sea level in Celsius?
A) 100
B) 90
C) 80
D) 120
Correct Answer: A
`
