package memstore

import (
	"time"

	"gopkg.in/tomb.v2"

	oauth "github.com/vellumauth/core"
)

// Janitor periodically sweeps expired codes, tokens, PAR entries, and
// device challenges out of a Store, mirroring kiln.Scheduler's
// tomb-supervised background loop.
type Janitor struct {
	store    *Store
	interval time.Duration
	tomb     tomb.Tomb
}

// NewJanitor starts a Janitor sweeping store every interval. Callers must
// call Stop to shut it down cleanly.
func NewJanitor(store *Store, interval time.Duration) *Janitor {
	j := &Janitor{store: store, interval: interval}
	j.tomb.Go(j.run)
	return j
}

func (j *Janitor) run() error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.store.sweep()
		case <-j.tomb.Dying():
			return nil
		}
	}
}

// Stop terminates the background sweep and waits for it to exit.
func (j *Janitor) Stop() error {
	j.tomb.Kill(nil)
	return j.tomb.Wait()
}

// sweep deletes every entry that has expired, across all maps.
func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := oauth.NowFunc()

	for k, c := range s.codes {
		if now.After(c.expiresAt) {
			delete(s.codes, k)
		}
	}
	for k, p := range s.requests {
		if now.After(p.expiresAt) {
			delete(s.requests, k)
		}
	}
	for k, t := range s.accessTokens {
		if now.After(t.expiresAt) {
			delete(s.accessTokens, k)
		}
	}
	for k, t := range s.refreshTokens {
		if now.After(t.expiresAt) {
			delete(s.refreshTokens, k)
		}
	}
	for k, d := range s.devices {
		if now.After(d.expiresAt) {
			delete(s.devices, k)
			delete(s.userCodes, d.userCode)
		}
	}
}
