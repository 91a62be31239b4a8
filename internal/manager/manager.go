// Package manager implements the protocol controller that drives an
// address-collection session: it sequences token acquisition, payload
// construction, and rendering of the hosted frame, then interprets the
// frame's inbound message protocol until the session ends.
package manager

import (
	"context"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/okhi/okcollect/internal/config"
	"github.com/okhi/okcollect/internal/domain"
	"github.com/okhi/okcollect/internal/frameproto"
	"github.com/okhi/okcollect/internal/payload"
	"github.com/okhi/okcollect/internal/platform"
)

// State is the controller lifecycle phase.
type State string

const (
	StateIdle            State = "idle"
	StateAcquiringToken  State = "acquiring_token"
	StateBuildingPayload State = "building_payload"
	StateReadyHidden     State = "ready_hidden"
	StateRendering       State = "rendering"
	StateClosed          State = "closed"
)

// Session modes: create collects a new address, select resumes over the
// user's existing addresses.
const (
	ModeCreate = "create"
	ModeSelect = "select"
)

// TokenSource acquires per-user authorization tokens. [auth.Provider]
// satisfies it.
type TokenSource interface {
	SignInWithPhone(ctx context.Context, phone string, scopes []string) (string, error)
}

// Surface is the embedded-content rendering target. A Surface instance is
// owned exclusively by one Manager; the message channel it exposes must not
// be shared.
type Surface interface {
	// Render makes the surface visible, loaded at frameURL, with the
	// bootstrap script executed before the frame bundle runs.
	Render(ctx context.Context, frameURL, bootstrapScript string) error
	// InjectScript runs a script inside the already-rendered frame.
	InjectScript(ctx context.Context, script string) error
	// Hide removes the surface from view without tearing it down.
	Hide()
	// Messages streams raw inbound protocol messages from the frame.
	Messages() <-chan []byte
	Close() error
}

// VerificationStarter begins address verification for a collected location.
type VerificationStarter interface {
	StartVerification(ctx context.Context, user domain.User, location domain.Location, types []string) error
}

// Callbacks receive session outcomes. All errors from the controller's
// async chain funnel into OnError; nothing is ever returned to a caller
// directly. Callbacks run on controller goroutines and should return
// quickly.
type Callbacks struct {
	OnSuccess      func(Result)
	OnError        func(error)
	OnCloseRequest func()
}

// Props are the caller-controlled session inputs. Passing updated props to
// [Manager.Update] re-evaluates the session chain.
type Props struct {
	User       domain.User
	Theme      *payload.Theme
	Config     *payload.Config
	Mode       string
	LocationID string
}

// Manager is the session controller. Create one per collection surface; it
// serializes all state behind a mutex and keys its async chain by a
// generation counter so stale completions are discarded.
type Manager struct {
	cfg      *config.App
	adapter  platform.Adapter
	tokens   TokenSource
	surface  Surface
	verifier VerificationStarter
	cb       Callbacks
	log      *slog.Logger

	mu            sync.Mutex
	state         State
	launch        bool
	preparing     bool
	misconfigured bool
	generation    uint64
	props         Props
	pendingProps  Props
	builtProps    Props
	token         string
	payload       *frameproto.StartPayload
	frameURL      string
	loopCancel    context.CancelFunc
}

// New creates a Manager. cfg may be nil when the host application never set
// its configuration; in that case an active launch reports unauthorized.
func New(cfg *config.App, adapter platform.Adapter, tokens TokenSource, surface Surface, cb Callbacks, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:     cfg,
		adapter: adapter,
		tokens:  tokens,
		surface: surface,
		cb:      cb,
		log:     logger,
		state:   StateIdle,
	}
}

// SetVerificationStarter wires the starter used by success results.
func (m *Manager) SetVerificationStarter(v VerificationStarter) {
	m.verifier = v
}

// State returns the current lifecycle phase.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Update applies new props and the launch flag. The token/payload chain
// starts as soon as a phone number is known, even while launch is false;
// failures during such a probe are swallowed and only surface once the
// caller actively launches. Toggling launch off while rendering hides the
// surface immediately without firing any callback.
func (m *Manager) Update(ctx context.Context, props Props, launch bool) {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}

	phoneChanged := m.props.User.Phone != "" && m.props.User.Phone != props.User.Phone
	m.props = props
	m.launch = launch

	switch {
	case phoneChanged:
		// Invalidate anything derived from the previous identity.
		m.generation++
		m.token = ""
		m.payload = nil
		if m.state == StateRendering {
			m.hideLocked()
		} else if !m.preparing {
			m.state = StateIdle
		}
	case m.payload != nil && !payloadInputsEqual(m.builtProps, props):
		// Same identity, new payload inputs: the token stays valid but
		// the cached payload must be rebuilt before the next show.
		m.generation++
		m.payload = nil
		if m.state == StateRendering {
			m.hideLocked()
		} else if !m.preparing {
			m.state = StateIdle
		}
	case m.preparing && !payloadInputsEqual(m.pendingProps, props):
		// The in-flight build is using outdated inputs; let it complete
		// stale and restart with the latest props.
		m.generation++
	}

	if !launch && m.state == StateRendering {
		m.hideLocked()
	}
	if strings.TrimSpace(props.User.Phone) == "" {
		m.mu.Unlock()
		return
	}

	switch {
	case m.token == "" || m.payload == nil:
		if !m.preparing {
			m.preparing = true
			m.pendingProps = props
			m.generation++
			gen := m.generation
			m.mu.Unlock()
			go m.prepare(ctx, props, gen)
			return
		}
		m.mu.Unlock()
	case launch && m.state == StateReadyHidden:
		gen := m.generation
		m.mu.Unlock()
		go m.show(ctx, gen)
	default:
		m.mu.Unlock()
	}
}

// HandleBack forwards hardware/gesture back navigation into the frame's own
// history. It reports whether the event was consumed.
func (m *Manager) HandleBack(ctx context.Context) bool {
	m.mu.Lock()
	rendering := m.state == StateRendering
	m.mu.Unlock()
	if !rendering {
		return false
	}
	if err := m.surface.InjectScript(ctx, frameproto.HistoryBackScript()); err != nil {
		m.emitError(domain.WrapError(domain.CodeUnknown, "forward back navigation", err))
	}
	return true
}

// Reset clears the cached token and payload so the next Update starts a
// fresh session chain.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateClosed {
		return
	}
	m.generation++
	m.token = ""
	m.payload = nil
	if m.state == StateRendering {
		m.hideLocked()
	}
	m.state = StateIdle
}

// Close ends the session permanently and releases the surface.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return nil
	}
	m.generation++
	if m.loopCancel != nil {
		m.loopCancel()
		m.loopCancel = nil
	}
	m.state = StateClosed
	m.mu.Unlock()
	return m.surface.Close()
}

// hideLocked hides the surface and stops the message loop. Callers hold mu.
func (m *Manager) hideLocked() {
	if m.loopCancel != nil {
		m.loopCancel()
		m.loopCancel = nil
	}
	m.surface.Hide()
	m.state = StateReadyHidden
}

// payloadInputsEqual reports whether two prop sets build the same start
// payload. Mode is excluded: it only selects the bootstrap message, which is
// read fresh at show time.
func payloadInputsEqual(a, b Props) bool {
	return a.User == b.User &&
		a.LocationID == b.LocationID &&
		reflect.DeepEqual(a.Theme, b.Theme) &&
		reflect.DeepEqual(a.Config, b.Config)
}

func (m *Manager) emitError(err error) {
	if m.cb.OnError != nil {
		m.cb.OnError(err)
		return
	}
	m.log.Warn("unhandled session error", "err", err)
}

// reportLaunchError surfaces err through OnError only while the caller is
// actively launching this generation; probe failures stay silent.
func (m *Manager) reportLaunchError(gen uint64, err error) {
	m.mu.Lock()
	active := gen == m.generation && m.launch
	m.mu.Unlock()
	if !active {
		m.log.Debug("suppressed session error", "err", err)
		return
	}
	m.emitError(err)
}
