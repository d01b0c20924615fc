package realtime

import "sync"

// Mock implements Channel for testing. Calls are recorded for assertions.
type Mock struct {
	mu sync.Mutex

	// Captured calls
	ToolResults     map[string]string // callID -> output
	CreateCalls     int
	CancelCalls     int
	TruncatedItems  []string
	TruncatedEndMs  []int

	// Configurable behavior
	SubmitToolResultFunc func(callID, output string) error
	CreateResponseFunc   func() error
	CancelResponseFunc   func() error
}

// NewMock creates a new mock channel.
func NewMock() *Mock {
	return &Mock{
		ToolResults: make(map[string]string),
	}
}

// SubmitToolResult implements Channel.
func (m *Mock) SubmitToolResult(callID, output string) error {
	if m.SubmitToolResultFunc != nil {
		return m.SubmitToolResultFunc(callID, output)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ToolResults[callID] = output
	return nil
}

// CreateResponse implements Channel.
func (m *Mock) CreateResponse() error {
	if m.CreateResponseFunc != nil {
		return m.CreateResponseFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	return nil
}

// CancelResponse implements Channel.
func (m *Mock) CancelResponse() error {
	if m.CancelResponseFunc != nil {
		return m.CancelResponseFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelCalls++
	return nil
}

// TruncateItem implements Channel.
func (m *Mock) TruncateItem(itemID string, audioEndMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TruncatedItems = append(m.TruncatedItems, itemID)
	m.TruncatedEndMs = append(m.TruncatedEndMs, audioEndMs)
	return nil
}

// CreateCount returns how many responses were requested.
func (m *Mock) CreateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CreateCalls
}

// CancelCount returns how many cancellations were sent.
func (m *Mock) CancelCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CancelCalls
}

// ToolResult returns the recorded output for a call id.
func (m *Mock) ToolResult(callID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, ok := m.ToolResults[callID]
	return out, ok
}

var _ Channel = (*Mock)(nil)
