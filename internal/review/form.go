package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dhanuzh/dreview/internal/log"
	"github.com/Dhanuzh/dreview/internal/provider"
)

// User-facing messages written into form state.
const (
	NoticeEmptyCode   = "Please enter some code."
	NoticeBusy        = "A review is already in progress."
	MsgKeyRequired    = "API key is required."
	MsgKeyRejected    = "❌ API key is invalid or expired. Please update your API key."
	MsgReviewFailed   = "❌ Error getting review. Check your API key or model."
	noticeDiscardedFm = "Review for %s discarded after clear."
)

// ErrUnknownModel is returned when selecting an identifier outside the registry.
var ErrUnknownModel = errors.New("unknown model")

// Outcome is the result of a submit attempt.
type Outcome int

const (
	OutcomeEmptyCode   Outcome = iota + 1 // blocked: no code
	OutcomeMissingKey                     // blocked: no API key
	OutcomeBusy                           // blocked: a submission is outstanding
	OutcomeStarted                        // request issued, result pending
	OutcomeReviewed                       // review text holds the model output
	OutcomeKeyRejected                    // endpoint answered 401
	OutcomeFailed                         // any other failure
	OutcomeDiscarded                      // form was cleared while the request was outstanding
)

var outcomeNames = map[Outcome]string{
	OutcomeEmptyCode:   "empty_code",
	OutcomeMissingKey:  "missing_key",
	OutcomeBusy:        "busy",
	OutcomeStarted:     "started",
	OutcomeReviewed:    "reviewed",
	OutcomeKeyRejected: "key_rejected",
	OutcomeFailed:      "failed",
	OutcomeDiscarded:   "discarded",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Blocked reports whether the submit attempt never reached the endpoint.
func (o Outcome) Blocked() bool {
	return o == OutcomeEmptyCode || o == OutcomeMissingKey || o == OutcomeBusy
}

// Notice is the alert-style message for outcomes that are not written into state.
func (o Outcome) Notice() string {
	switch o {
	case OutcomeEmptyCode:
		return NoticeEmptyCode
	case OutcomeBusy:
		return NoticeBusy
	default:
		return ""
	}
}

// State is a copy of everything the form shows.
type State struct {
	Code     string `json:"code"`
	APIKey   string `json:"-"`
	Model    string `json:"model"`
	Review   string `json:"review"`
	KeyError string `json:"key_error"`
	Loading  bool   `json:"loading"`
}

// ProviderFactory builds a completion client bound to one API key.
type ProviderFactory func(apiKey string) provider.Provider

// Form owns the reviewer state. All transitions go through its methods;
// it is safe for concurrent use.
type Form struct {
	mu         sync.Mutex
	state      State
	generation uint64 // bumped by Clear; results from older generations are dropped

	newClient ProviderFactory
	log       logrus.FieldLogger
}

// Option configures a Form.
type Option func(*Form)

// WithAPIKey prepopulates the API key field.
func WithAPIKey(key string) Option {
	return func(f *Form) { f.state.APIKey = key }
}

// WithModel preselects a model. Identifiers outside the registry are ignored.
func WithModel(id string) Option {
	return func(f *Form) {
		if _, ok := LookupModel(id); ok {
			f.state.Model = id
		}
	}
}

// WithCode prefills the code field.
func WithCode(code string) Option {
	return func(f *Form) { f.state.Code = code }
}

// WithLogger sets the logger used for submission events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(f *Form) {
		if l != nil {
			f.log = l
		}
	}
}

// NewForm creates a form with empty fields and the default model selected.
func NewForm(newClient ProviderFactory, opts ...Option) *Form {
	f := &Form{
		state:     State{Model: DefaultModel()},
		newClient: newClient,
		log:       log.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) SetCode(code string) {
	f.mu.Lock()
	f.state.Code = code
	f.mu.Unlock()
}

func (f *Form) SetAPIKey(key string) {
	f.mu.Lock()
	f.state.APIKey = key
	f.mu.Unlock()
}

// SelectModel changes the selected model. The selection is unchanged on error.
func (f *Form) SelectModel(id string) error {
	if _, ok := LookupModel(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	f.mu.Lock()
	f.state.Model = id
	f.mu.Unlock()
	return nil
}

// Clear resets code, review text and model selection. The API key and the
// key-error message are kept so credentials need not be re-entered.
func (f *Form) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Code = ""
	f.state.Review = ""
	f.state.Model = DefaultModel()
	f.generation++
}

// Submission is one outstanding request. It holds the inputs as they were
// when the submission began.
type Submission struct {
	id         string
	form       *Form
	generation uint64
	code       string
	apiKey     string
	model      string
	err        *provider.ClassifiedError
}

func (s *Submission) ID() string    { return s.id }
func (s *Submission) Model() string { return s.model }

// Err is the classified failure of a finished Run, or nil.
func (s *Submission) Err() *provider.ClassifiedError { return s.err }

// Begin validates the current inputs and, when they pass, marks the form as
// loading and returns the submission to run. The returned Outcome is
// OutcomeStarted exactly when the submission is non-nil.
func (f *Form) Begin() (*Submission, Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Loading {
		return nil, OutcomeBusy
	}
	if strings.TrimSpace(f.state.Code) == "" {
		return nil, OutcomeEmptyCode
	}
	if strings.TrimSpace(f.state.APIKey) == "" {
		f.state.KeyError = MsgKeyRequired
		return nil, OutcomeMissingKey
	}

	f.state.KeyError = ""
	f.state.Review = ""
	f.state.Loading = true

	return &Submission{
		id:         uuid.NewString(),
		form:       f,
		generation: f.generation,
		code:       f.state.Code,
		apiKey:     strings.TrimSpace(f.state.APIKey),
		model:      f.state.Model,
	}, OutcomeStarted
}

// Submit validates, calls the endpoint and writes the outcome into state.
func (f *Form) Submit(ctx context.Context) Outcome {
	sub, outcome := f.Begin()
	if sub == nil {
		return outcome
	}
	return sub.Run(ctx)
}

// Run performs the call and maps the result into form state. Loading is
// released on every return path, including a panic while handling the response.
func (s *Submission) Run(ctx context.Context) (outcome Outcome) {
	f := s.form
	entry := f.log.WithFields(logrus.Fields{
		"submission": s.id,
		"model":      s.model,
	})
	start := time.Now()

	defer f.release()
	defer func() {
		if r := recover(); r != nil {
			entry.Errorf("review handling panicked: %v", r)
			outcome = f.finish(s, OutcomeFailed, "")
		}
		entry.WithFields(logrus.Fields{
			"outcome": outcome.String(),
			"elapsed": time.Since(start).Round(time.Millisecond),
		}).Info("review finished")
	}()

	entry.WithField("code_bytes", len(s.code)).Debug("review requested")

	client := f.newClient(s.apiKey)
	resp, err := client.CreateMessage(ctx, BuildRequest(s.model, s.code))
	if err != nil {
		ce := provider.ClassifyError(err)
		s.err = ce
		entry.WithFields(logrus.Fields{
			"error_type": ce.Type,
			"status":     ce.StatusCode,
		}).Errorf("API request error: %v", err)
		if ce.IsKeyRejected() {
			return f.finish(s, OutcomeKeyRejected, "")
		}
		return f.finish(s, OutcomeFailed, "")
	}

	entry.WithField("tokens", resp.Usage.TotalTokens()).Debug("review received")
	return f.finish(s, OutcomeReviewed, resp.Content)
}

// finish writes a settled outcome into state unless the form was cleared
// after the submission began.
func (f *Form) finish(s *Submission, outcome Outcome, content string) Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s.generation != f.generation {
		f.log.WithField("submission", s.id).Infof(noticeDiscardedFm, s.model)
		return OutcomeDiscarded
	}

	switch outcome {
	case OutcomeReviewed:
		f.state.Review = content
	case OutcomeKeyRejected:
		f.state.KeyError = MsgKeyRejected
		f.state.Review = ""
	default:
		f.state.Review = MsgReviewFailed
	}
	return outcome
}

func (f *Form) release() {
	f.mu.Lock()
	f.state.Loading = false
	f.mu.Unlock()
}
