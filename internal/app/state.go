// Package app provides application lifecycle management, run orchestration,
// and events.
package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"flickertag/internal/image"
	"flickertag/internal/output"
	"flickertag/internal/pairing"
	"flickertag/internal/run"
	"flickertag/internal/session"
	"flickertag/pkg/geometry"
)

// EventType identifies different application events.
type EventType int

const (
	EventRunConfigured EventType = iota
	EventQueueLoaded
	EventPairLoaded
	EventSessionStarted
	EventAnnotationsChanged
	EventResultSaved
	EventQueueEmpty
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the application state: the configured run, the pairing queue,
// and the session currently under annotation. One session is active at a
// time; the next pair does not begin until the previous result is written.
type State struct {
	mu sync.RWMutex

	config  *run.Config
	classes *session.ClassSet
	writer  *output.Writer

	queue []pairing.Pair
	stats pairing.Stats

	currentPair *pairing.Pair
	reference   *image.Layer
	target      *image.Layer
	current     *session.Session

	listeners map[EventType][]EventListener
}

// NewState creates a new application state.
func NewState() *State {
	return &State{
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Configure validates and installs the run configuration. The class set is
// frozen here and stays immutable for the rest of the run.
func (s *State) Configure(cfg *run.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	classes, err := cfg.ClassSet()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.config = cfg
	s.classes = classes
	s.writer = output.NewWriter(cfg.OutputDir)
	s.queue = nil
	s.stats = pairing.Stats{}
	s.currentPair = nil
	s.reference = nil
	s.target = nil
	s.current = nil
	s.mu.Unlock()

	s.Emit(EventRunConfigured, cfg)
	return nil
}

// Config returns the active run configuration, or nil before Configure.
func (s *State) Config() *run.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Classes returns the frozen change-class set, or nil before Configure.
func (s *State) Classes() *session.ClassSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classes
}

// LoadQueue runs the pair finder and installs the resulting queue.
// Automatic mode only.
func (s *State) LoadQueue() (pairing.Stats, error) {
	s.mu.RLock()
	cfg := s.config
	s.mu.RUnlock()

	if cfg == nil {
		return pairing.Stats{}, fmt.Errorf("run not configured")
	}
	if cfg.Mode != run.ModeAutomatic {
		return pairing.Stats{}, fmt.Errorf("pair queue requires automatic mode")
	}

	pairs, stats, err := pairing.Find(cfg.Pairing())
	if err != nil {
		return stats, err
	}

	s.mu.Lock()
	s.queue = pairs
	s.stats = stats
	s.mu.Unlock()

	s.Emit(EventQueueLoaded, stats)
	return stats, nil
}

// QueueRemaining returns how many pairs are still waiting in the queue.
func (s *State) QueueRemaining() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queue)
}

// Stats returns the most recent pairing statistics.
func (s *State) Stats() pairing.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// LoadNextPair pops the next queued pair and loads both of its images.
// Returns nil (and emits EventQueueEmpty) when the queue is exhausted.
func (s *State) LoadNextPair() (*pairing.Pair, error) {
	s.mu.Lock()
	if s.current != nil && !s.current.Done() {
		s.mu.Unlock()
		return nil, fmt.Errorf("previous session still in progress")
	}
	if len(s.queue) == 0 {
		s.mu.Unlock()
		s.Emit(EventQueueEmpty, nil)
		return nil, nil
	}
	pair := s.queue[0]
	s.queue = s.queue[1:]
	s.mu.Unlock()

	if err := s.loadPair(pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// LoadManualPair loads an operator-chosen pair. The output path defaults to
// tag substitution on the target filename when the tags apply, and to the
// target name otherwise; SetOutputPath can override it before saving.
func (s *State) LoadManualPair(refPath, tgtPath string) (*pairing.Pair, error) {
	s.mu.RLock()
	cfg := s.config
	s.mu.RUnlock()

	if cfg == nil {
		return nil, fmt.Errorf("run not configured")
	}

	tgtName := filepath.Base(tgtPath)
	outName, err := pairing.ResultName(tgtName, cfg.TargetTag, cfg.OutputTag)
	if err != nil {
		outName = strings.TrimSuffix(tgtName, filepath.Ext(tgtName)) + ".json"
	}

	pair := pairing.Pair{
		Key:           strings.TrimSuffix(tgtName, filepath.Ext(tgtName)),
		ReferencePath: refPath,
		TargetPath:    tgtPath,
		OutputPath:    filepath.Join(cfg.OutputDir, outName),
	}

	if err := s.loadPair(pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// loadPair loads both images and installs the pair as current.
func (s *State) loadPair(pair pairing.Pair) error {
	ref, err := image.Load(pair.ReferencePath)
	if err != nil {
		return fmt.Errorf("reference image: %w", err)
	}
	ref.Role = image.RoleReference

	tgt, err := image.Load(pair.TargetPath)
	if err != nil {
		return fmt.Errorf("target image: %w", err)
	}
	tgt.Role = image.RoleTarget

	s.mu.Lock()
	s.currentPair = &pair
	s.reference = ref
	s.target = tgt
	s.current = nil
	s.mu.Unlock()

	s.Emit(EventPairLoaded, &pair)
	return nil
}

// SetOutputPath overrides the current pair's output path (manual-mode save
// dialog).
func (s *State) SetOutputPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentPair != nil {
		s.currentPair.OutputPath = path
	}
}

// CurrentPair returns the pair under annotation, or nil.
func (s *State) CurrentPair() *pairing.Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPair
}

// Reference returns the loaded reference layer, or nil.
func (s *State) Reference() *image.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reference
}

// Target returns the loaded target layer, or nil.
func (s *State) Target() *image.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

// StartSession arms polygon capture for the loaded pair. view maps
// reference-image pixels to canvas coordinates and is fixed for the pair.
func (s *State) StartSession(view geometry.AffineTransform) (*session.Session, error) {
	s.mu.Lock()
	if s.currentPair == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("no pair loaded")
	}
	if s.classes == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("no change classes configured")
	}

	sess, err := session.New(*s.currentPair, s.classes, view)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.current = sess
	s.mu.Unlock()

	s.Emit(EventSessionStarted, sess)
	return sess, nil
}

// Session returns the active session, or nil.
func (s *State) Session() *session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SaveResult writes the terminal session's result to the pair's output path
// and clears the current pair so the next one can begin.
func (s *State) SaveResult() (session.Result, error) {
	s.mu.RLock()
	sess := s.current
	pair := s.currentPair
	writer := s.writer
	s.mu.RUnlock()

	if sess == nil || pair == nil {
		return session.Result{}, fmt.Errorf("no active session")
	}

	result, err := sess.Result()
	if err != nil {
		return session.Result{}, err
	}
	if err := writer.Write(pair.OutputPath, result); err != nil {
		return session.Result{}, err
	}

	s.mu.Lock()
	s.currentPair = nil
	s.reference = nil
	s.target = nil
	s.current = nil
	if s.stats.ToDo > 0 {
		s.stats.ToDo--
		s.stats.Done++
	}
	s.mu.Unlock()

	s.Emit(EventResultSaved, result)
	return result, nil
}
