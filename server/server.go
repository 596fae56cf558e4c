package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/mirlive/chord"
	"github.com/jsphweid/mirlive/model"
	"github.com/rs/cors"
)

const settleTime = 100 * time.Millisecond

// Store holds the latest analysis snapshot for the status endpoint. Chord
// updates are debounced so a burst of transitional voicings only surfaces
// the settled one.
type Store struct {
	mu        sync.Mutex
	sessionID string

	chord string
	notes model.Notes

	stagedChord string
	stagedNotes model.Notes

	bpm        int
	confidence float64

	debounced func(func())
}

func NewStore() *Store {
	return &Store{
		sessionID: uuid.New().String(),
		debounced: debounce.New(settleTime),
	}
}

func (s *Store) SetChord(name string, notes model.Notes) {
	s.mu.Lock()
	s.stagedChord = name
	s.stagedNotes = notes
	s.mu.Unlock()
	s.debounced(s.commit)
}

func (s *Store) commit() {
	s.mu.Lock()
	s.chord = s.stagedChord
	s.notes = s.stagedNotes
	s.mu.Unlock()
}

func (s *Store) SetBeat(bpm int, confidence float64) {
	s.mu.Lock()
	s.bpm = bpm
	s.confidence = confidence
	s.mu.Unlock()
}

func (s *Store) Status() model.StatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(s.notes))
	for i, n := range s.notes {
		names[i] = chord.NoteNameOctave(n)
	}
	return model.StatusResponse{
		SessionID:  s.sessionID,
		Chord:      s.chord,
		Notes:      names,
		BPM:        s.bpm,
		Confidence: s.confidence,
	}
}

// Router serves the live analysis snapshot.
func Router(store *Store) http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(store.Status())
	}).Methods("GET")
	return cors.Default().Handler(router)
}
