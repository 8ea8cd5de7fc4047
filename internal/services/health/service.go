package health

import (
	"context"
	"time"

	"resume-roaster/internal/session"
	"resume-roaster/internal/shared/storage/kv"
)

const probeTimeout = 2 * time.Second

// Service reports whether the local store answers and which backends are active.
type Service struct {
	Store         kv.Store
	StoreType     string
	Provider      string
	LLMConfigured bool
}

// Status is the /health payload.
type Status struct {
	OK            bool   `json:"ok"`
	Store         string `json:"store"`
	Provider      string `json:"provider"`
	LLMConfigured bool   `json:"llmConfigured"`
	Error         string `json:"error,omitempty"`
}

// NewService constructs a new health service.
func NewService(store kv.Store, storeType, provider string, llmConfigured bool) *Service {
	return &Service{Store: store, StoreType: storeType, Provider: provider, LLMConfigured: llmConfigured}
}

// Check probes the store with a read of the session key.
func (s *Service) Check(ctx context.Context) Status {
	st := Status{OK: true, Store: s.StoreType, Provider: s.Provider, LLMConfigured: s.LLMConfigured}
	if s.Store == nil {
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if _, _, err := s.Store.Get(ctx, session.Key); err != nil {
		st.OK = false
		st.Error = "store unavailable"
	}
	return st
}
