// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package simulator

import (
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// sessionStore tracks the sessions the simulated TV has handed out.
// Real NetCast firmware only remembers a handful of pairings, so the
// store is a small LRU: pairing a fifth client silently evicts the
// oldest session.
type sessionStore struct {
	cache *lru.Cache[string, time.Time]
	ttl   time.Duration
}

func newSessionStore(maxSize int, ttl time.Duration) *sessionStore {
	if maxSize <= 0 {
		maxSize = 4
	}
	cache, _ := lru.New[string, time.Time](maxSize)
	return &sessionStore{
		cache: cache,
		ttl:   ttl,
	}
}

// Mint creates a new session id and remembers it.
func (s *sessionStore) Mint() string {
	id := uuid.New().String()
	s.cache.Add(id, time.Now())
	return id
}

// Valid reports whether the session exists and has not expired.
func (s *sessionStore) Valid(id string) bool {
	if id == "" {
		return false
	}
	created, found := s.cache.Get(id)
	if !found {
		return false
	}
	if s.ttl > 0 && time.Since(created) > s.ttl {
		s.cache.Remove(id)
		return false
	}
	return true
}

// Drop forgets a single session.
func (s *sessionStore) Drop(id string) {
	s.cache.Remove(id)
}

// Len returns the number of live sessions.
func (s *sessionStore) Len() int {
	return s.cache.Len()
}

// Purge forgets every session.
func (s *sessionStore) Purge() {
	s.cache.Purge()
}
