package manager

import (
	"context"
	"strings"

	"github.com/okhi/okcollect/internal/config"
	"github.com/okhi/okcollect/internal/domain"
	"github.com/okhi/okcollect/internal/frameproto"
	"github.com/okhi/okcollect/internal/payload"
)

// prepare runs the token and payload chain for one generation. It never
// returns errors to a caller; failures go through reportLaunchError so
// background probes stay silent.
func (m *Manager) prepare(ctx context.Context, props Props, gen uint64) {
	if m.cfg == nil {
		// Reported at most once per manager; every later launch attempt
		// fails the same way and repeating it is just noise.
		m.mu.Lock()
		m.preparing = false
		m.state = StateIdle
		report := m.launch && gen == m.generation && !m.misconfigured
		if report {
			m.misconfigured = true
		}
		m.mu.Unlock()
		if report {
			m.emitError(domain.NewError(domain.CodeUnauthorized, "application configuration is not set"))
		}
		return
	}

	// A cached token survives payload-only invalidation; only an identity
	// change clears it.
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()
	if token == "" {
		m.setState(gen, StateAcquiringToken)
		fresh, err := m.tokens.SignInWithPhone(ctx, props.User.Phone, []string{domain.ScopeAddress})
		if err != nil {
			m.failPrepare(ctx, gen, err)
			return
		}
		token = fresh
	}

	m.setState(gen, StateBuildingPayload)
	pl, err := payload.Build(ctx, m.adapter, payload.Props{
		User:       props.User,
		Theme:      props.Theme,
		Config:     props.Config,
		LocationID: props.LocationID,
	}, token, *m.cfg)
	if err != nil {
		m.failPrepare(ctx, gen, err)
		return
	}

	osMajor := config.OSMajorVersion(pl.Context.Platform.OSVersion)
	frameURL := config.FrameURL(m.adapter.Platform(), osMajor, m.cfg.Mode)

	m.mu.Lock()
	m.preparing = false
	if gen != m.generation {
		m.restartPrepareLocked(ctx)
		m.mu.Unlock()
		return
	}
	m.token = token
	m.payload = &pl
	m.builtProps = props
	m.frameURL = frameURL
	m.state = StateReadyHidden
	launch := m.launch
	m.mu.Unlock()

	m.log.Debug("session prepared", "url", frameURL)
	if launch {
		m.show(ctx, gen)
	}
}

// failPrepare records a prepare failure and reports it only when a launch is
// actively waiting on this generation.
func (m *Manager) failPrepare(ctx context.Context, gen uint64, err error) {
	m.mu.Lock()
	m.preparing = false
	if gen != m.generation {
		m.restartPrepareLocked(ctx)
		m.mu.Unlock()
		return
	}
	m.state = StateIdle
	active := m.launch
	m.mu.Unlock()

	if active {
		m.emitError(err)
		return
	}
	m.log.Debug("suppressed prepare failure", "err", err)
}

// restartPrepareLocked re-runs the chain with the latest props after a stale
// completion, so an identity change mid-flight still converges. Callers hold
// mu.
func (m *Manager) restartPrepareLocked(ctx context.Context) {
	if m.token != "" && m.payload != nil {
		return
	}
	if strings.TrimSpace(m.props.User.Phone) == "" {
		m.state = StateIdle
		return
	}
	m.preparing = true
	m.pendingProps = m.props
	m.generation++
	go m.prepare(ctx, m.props, m.generation)
}

// setState advances the lifecycle phase unless the generation went stale.
func (m *Manager) setState(gen uint64, s State) {
	m.mu.Lock()
	if gen == m.generation {
		m.state = s
	}
	m.mu.Unlock()
}

// show renders the prepared session. When permission onboarding is disabled
// the frame cannot walk the user through granting access, so the background
// permission must already be held before anything is rendered.
func (m *Manager) show(ctx context.Context, gen uint64) {
	m.mu.Lock()
	if gen != m.generation || m.state != StateReadyHidden || !m.launch || m.payload == nil {
		m.mu.Unlock()
		return
	}
	pl := *m.payload
	frameURL := m.frameURL
	props := m.props
	m.mu.Unlock()

	if props.Config != nil && props.Config.PermissionsOnboarding != nil && !*props.Config.PermissionsOnboarding {
		granted, err := m.adapter.BackgroundGranted(ctx)
		if err != nil {
			m.reportLaunchError(gen, domain.WrapError(domain.CodeUnknown, "query background permission", err))
			return
		}
		if !granted {
			m.reportLaunchError(gen, domain.NewError(domain.CodePermissionDenied,
				"background location permission is required when onboarding is disabled"))
			return
		}
	}

	message := frameproto.BootstrapStartApp
	if props.Mode == ModeSelect {
		message = frameproto.BootstrapSelectLocation
	}
	script, err := frameproto.BootstrapScript(frameproto.Bootstrap{
		Message: message,
		Payload: pl,
		URL:     frameURL,
	})
	if err != nil {
		m.reportLaunchError(gen, domain.WrapError(domain.CodeUnknown, "encode start payload", err))
		return
	}

	if err := m.surface.Render(ctx, frameURL, script); err != nil {
		m.reportLaunchError(gen, domain.WrapError(domain.CodeUnknown, "render collection frame", err))
		return
	}

	m.mu.Lock()
	if gen != m.generation || !m.launch {
		m.mu.Unlock()
		m.surface.Hide()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	m.loopCancel = cancel
	m.state = StateRendering
	m.mu.Unlock()

	m.log.Info("collection frame rendered", "url", frameURL, "mode", message)
	go m.readLoop(loopCtx, gen)
}
