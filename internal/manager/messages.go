package manager

import (
	"context"

	"github.com/okhi/okcollect/internal/domain"
	"github.com/okhi/okcollect/internal/frameproto"
)

// readLoop drains the surface's message channel for the lifetime of one
// rendered session.
func (m *Manager) readLoop(ctx context.Context, gen uint64) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-m.surface.Messages():
			if !ok {
				return
			}
			m.handleMessage(ctx, gen, raw)
		}
	}
}

func (m *Manager) handleMessage(ctx context.Context, gen uint64, raw []byte) {
	m.mu.Lock()
	if gen != m.generation || m.state != StateRendering {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	msg, err := frameproto.Parse(raw)
	if err != nil {
		// Malformed traffic never tears the session down; the frame
		// stays up and the host just hears about it.
		m.emitError(domain.WrapError(domain.CodeUnknown, "invalid frame message", err))
		return
	}

	switch msg.Kind {
	case frameproto.KindLocationCreated, frameproto.KindLocationSelected, frameproto.KindLocationUpdated:
		m.finishWithLocation(*msg.Result)
	case frameproto.KindExitApp:
		m.endSession()
		if m.cb.OnCloseRequest != nil {
			m.cb.OnCloseRequest()
		}
	case frameproto.KindFatalExit:
		m.endSession()
		m.emitError(domain.NewError(domain.CodeUnknown, msg.FatalError))
	case frameproto.KindRequestLocationPermission:
		m.negotiatePermission(ctx, msg.Permission.Level)
	case frameproto.KindOpenAppSettings:
		m.handleOpenSettings(ctx)
	case frameproto.KindRequestEnableProtectedApps:
		if err := m.adapter.OpenProtectedApps(ctx); err != nil {
			m.emitError(domain.WrapError(domain.CodeUnknown, "open protected apps settings", err))
		}
	}
}

// finishWithLocation ends the session and hands the collected address to the
// host. The result keeps enough context to start verification later.
func (m *Manager) finishWithLocation(res frameproto.LocationResult) {
	m.endSession()
	if m.cb.OnSuccess == nil {
		m.log.Warn("address collected but no success callback is set", "location_id", res.Location.ID)
		return
	}
	m.cb.OnSuccess(Result{
		User:     res.User,
		Location: res.Location,
		verifier: m.verifier,
	})
}

// endSession hides the surface and drops back to the hidden-ready state. The
// cached token and payload survive so a relaunch skips straight to show.
func (m *Manager) endSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateRendering {
		return
	}
	m.launch = false
	m.hideLocked()
}

// negotiatePermission runs the OS permission flow for the requested level and
// replies to the frame with the resulting status token. Branches that hand
// the user off to system settings produce no reply; the frame re-requests
// when it regains focus.
func (m *Manager) negotiatePermission(ctx context.Context, level string) {
	reply, hasReply, err := m.adapter.RequestPermission(ctx, level)
	if err != nil {
		m.emitError(domain.WrapError(domain.CodeUnknown, "negotiate location permission", err))
		return
	}
	if !hasReply {
		return
	}
	if err := m.surface.InjectScript(ctx, frameproto.PermissionCallbackScript(reply)); err != nil {
		m.emitError(domain.WrapError(domain.CodeUnknown, "deliver permission reply", err))
	}
}

// handleOpenSettings short-circuits the settings hand-off when background
// access is already granted, replying always instead of bouncing the user
// out of the app.
func (m *Manager) handleOpenSettings(ctx context.Context) {
	granted, err := m.adapter.BackgroundGranted(ctx)
	if err != nil {
		m.emitError(domain.WrapError(domain.CodeUnknown, "query background permission", err))
		return
	}
	if granted {
		if err := m.surface.InjectScript(ctx, frameproto.PermissionCallbackScript(frameproto.ReplyAlways)); err != nil {
			m.emitError(domain.WrapError(domain.CodeUnknown, "deliver permission reply", err))
		}
		return
	}
	if err := m.adapter.OpenSettings(ctx); err != nil {
		m.emitError(domain.WrapError(domain.CodeUnknown, "open app settings", err))
	}
}
