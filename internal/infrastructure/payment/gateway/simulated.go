package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	dompayment "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
)

const DefaultSuccessRate = 0.7

// Simulated is an in-process gateway. Each intent settles exactly once, on
// its first lookup, succeeding with the configured probability.
type Simulated struct {
	mu          sync.Mutex
	random      *rand.Rand
	successRate float64
	intents     map[string]*dompayment.Capture
	settled     map[string]bool
}

func NewSimulated(successRate float64) *Simulated {
	s := &Simulated{
		random:  rand.New(rand.NewSource(time.Now().UnixNano())),
		intents: make(map[string]*dompayment.Capture),
		settled: make(map[string]bool),
	}
	s.SetSuccessRate(successRate)
	return s
}

func (s *Simulated) Name() string { return "simulated" }

func (s *Simulated) CreateIntent(ctx context.Context, amount int64, currency string) (dompayment.Intent, error) {
	if err := ctx.Err(); err != nil {
		return dompayment.Intent{}, err
	}
	if amount <= 0 {
		return dompayment.Intent{}, fmt.Errorf("simulated gateway: amount must be positive")
	}
	handle := "sim_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[handle] = &dompayment.Capture{
		Handle:   handle,
		Amount:   amount,
		Currency: strings.ToLower(currency),
	}
	return dompayment.Intent{CaptureHandle: handle, ClientSecret: handle + "_secret"}, nil
}

// Lookup settles the intent on first sight. Unknown handles come back as
// not succeeded rather than as an error.
func (s *Simulated) Lookup(ctx context.Context, handle string) (dompayment.Capture, error) {
	// respect cancellation even though this is mocked
	if err := ctx.Err(); err != nil {
		return dompayment.Capture{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.intents[handle]
	if !ok {
		return dompayment.Capture{Handle: handle}, nil
	}
	if !s.settled[handle] {
		c.Succeeded = s.random.Float64() < s.successRate
		s.settled[handle] = true
	}
	return *c, nil
}

// SetSuccessRate clamps rate into [0, 1].
func (s *Simulated) SetSuccessRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	s.successRate = rate
}
