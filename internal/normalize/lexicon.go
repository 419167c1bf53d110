package normalize

import (
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"fairway/internal/logging"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// lexicon is one compiled, immutable set of substitution tables.
type lexicon struct {
	slang     []slangEntry
	profanity *regexp.Regexp
}

type slangEntry struct {
	pattern     *regexp.Regexp
	replacement string
}

// LexiconFile is the on-disk override format. Entries extend (and on key
// collision replace) the built-in tables.
type LexiconFile struct {
	Slang     map[string]string `yaml:"slang"`
	Profanity []string          `yaml:"profanity"`
}

// compileLexicon builds the matchers. Slang phrases apply longest-first so
// "flat stick" wins over "stick". All matching is case-insensitive on word
// boundaries.
func compileLexicon(slang map[string]string, profanity []string) *lexicon {
	keys := make([]string, 0, len(slang))
	for k := range slang {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	lex := &lexicon{}
	for _, k := range keys {
		// Multi-word phrases match across whitespace runs; slang expansion
		// runs before whitespace collapse and must not miss "big   dog".
		words := strings.Fields(k)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		lex.slang = append(lex.slang, slangEntry{
			pattern:     regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`),
			replacement: slang[k],
		})
	}

	if len(profanity) > 0 {
		quoted := make([]string, 0, len(profanity))
		for _, w := range profanity {
			w = strings.TrimSpace(w)
			if w != "" {
				quoted = append(quoted, regexp.QuoteMeta(w))
			}
		}
		sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
		lex.profanity = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	}

	return lex
}

// LoadLexicon merges an override file into the built-in tables and installs
// the result.
func (n *Normalizer) LoadLexicon(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file LexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	slang := make(map[string]string, len(defaultSlang)+len(file.Slang))
	for k, v := range defaultSlang {
		slang[k] = v
	}
	for k, v := range file.Slang {
		slang[strings.ToLower(k)] = v
	}

	profanity := append([]string{}, defaultProfanity...)
	profanity = append(profanity, file.Profanity...)

	n.lex.Store(compileLexicon(slang, profanity))
	logging.Get(logging.CategoryNormalize).Info("lexicon loaded from %s (slang=%d, profanity=%d)",
		path, len(slang), len(profanity))
	return nil
}

// LexiconWatcher hot-reloads a lexicon override file on change. Reload
// failures keep the previous lexicon; the watcher never breaks normalization.
type LexiconWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	norm     *Normalizer
	path     string
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewLexiconWatcher creates a watcher for the given override file.
func NewLexiconWatcher(norm *Normalizer, path string) (*LexiconWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &LexiconWatcher{
		watcher:  watcher,
		norm:     norm,
		path:     path,
		debounce: 200 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start loads the file once and begins watching. Non-blocking.
func (w *LexiconWatcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.norm.LoadLexicon(w.path); err != nil {
		logging.Get(logging.CategoryNormalize).Warn("initial lexicon load failed for %s: %v", w.path, err)
	}
	if err := w.watcher.Add(w.path); err != nil {
		return err
	}

	go w.loop()
	return nil
}

func (w *LexiconWatcher) loop() {
	defer close(w.doneCh)

	var last time.Time
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if time.Since(last) < w.debounce {
				continue
			}
			last = time.Now()
			if err := w.norm.LoadLexicon(w.path); err != nil {
				logging.Get(logging.CategoryNormalize).Warn("lexicon reload failed: %v", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryNormalize).Warn("lexicon watcher error: %v", err)
		}
	}
}

// Stop halts the watcher and waits for the loop to exit.
func (w *LexiconWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	close(w.stopCh)
	err := w.watcher.Close()
	<-w.doneCh
	return err
}
