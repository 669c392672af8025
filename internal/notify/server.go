package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/llehouerou/notifyd/internal/audio"
	"github.com/llehouerou/notifyd/internal/config"
)

const (
	busName       = "org.freedesktop.Notifications"
	objectPath    = dbus.ObjectPath("/org/freedesktop/Notifications")
	interfaceName = "org.freedesktop.Notifications"

	serverName   = "notifyd"
	serverVendor = "llehouerou"
	specVersion  = "1.2"
)

// ErrNameTaken is returned by Serve when another notification daemon
// owns the bus name.
var ErrNameTaken = errors.New("notification service name already owned")

// SoundRequester accepts sound requests. *audio.Gatekeeper implements it.
type SoundRequester interface {
	RequestPlayback(req audio.Request) error
}

// Emitter sends D-Bus signals. *dbus.Conn implements it.
type Emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// Sink receives every delivered notification.
type Sink func(Notification)

// CloseSink receives the id and reason of every closed notification.
type CloseSink func(id uint32, reason CloseReason)

// Request carries the arguments of a Notify call.
type Request struct {
	AppName       string
	ReplacesID    uint32
	Icon          string
	Summary       string
	Body          string
	Actions       []string
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // ms, -1 = server default, 0 = never
}

// Server is the notification service.
type Server struct {
	settings func() *config.Config
	sounds   SoundRequester
	emitter  Emitter
	sinks    []Sink
	closed   []CloseSink
	logger   *slog.Logger
	version  string

	store  *store
	nextID atomic.Uint32

	timersMu sync.Mutex
	timers   map[uint32]*time.Timer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithSink adds a receiver of delivered notifications. Sinks run in
// order on the caller's goroutine.
func WithSink(sink Sink) Option {
	return func(s *Server) { s.sinks = append(s.sinks, sink) }
}

// WithCloseSink adds a receiver of close events.
func WithCloseSink(sink CloseSink) Option {
	return func(s *Server) { s.closed = append(s.closed, sink) }
}

// WithEmitter sets where signals go. Export defaults it to the bus
// connection.
func WithEmitter(e Emitter) Option {
	return func(s *Server) { s.emitter = e }
}

// WithVersion sets the version reported by GetServerInformation.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a server reading its settings through settings on
// every call, so reloaded configuration applies to the next notification.
func NewServer(settings func() *config.Config, sounds SoundRequester, opts ...Option) *Server {
	s := &Server{
		settings: settings,
		sounds:   sounds,
		logger:   slog.Default(),
		version:  "dev",
		store:    newStore(MaxStored),
		timers:   make(map[uint32]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export registers the service object and its introspection data on
// conn without claiming the well-known name.
func (s *Server) Export(conn *dbus.Conn) error {
	if s.emitter == nil {
		s.emitter = conn
	}
	iface := &dbusInterface{s: s}
	if err := conn.Export(iface, objectPath, interfaceName); err != nil {
		return fmt.Errorf("export %s: %w", interfaceName, err)
	}
	node := &introspect.Node{
		Name: string(objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    interfaceName,
				Methods: introspect.Methods(iface),
				Signals: []introspect.Signal{
					{
						Name: "NotificationClosed",
						Args: []introspect.Arg{{Name: "id", Type: "u"}, {Name: "reason", Type: "u"}},
					},
				},
			},
		},
	}
	return conn.Export(introspect.NewIntrospectable(node), objectPath, "org.freedesktop.DBus.Introspectable")
}

// Serve exports the service and claims org.freedesktop.Notifications.
func (s *Server) Serve(conn *dbus.Conn) error {
	if err := s.Export(conn); err != nil {
		return err
	}
	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("request name %s: %w", busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return ErrNameTaken
	}
	s.logger.Info("notification service ready", "name", busName)
	return nil
}

// Capabilities lists the optional features the server implements.
func (s *Server) Capabilities() []string {
	return []string{"body", "body-markup", "body-hyperlinks", "sound"}
}

// Notify ingests a notification and returns its ID. Notifications from
// disabled applications get an ID but are not delivered.
func (s *Server) Notify(req Request) uint32 {
	cfg := s.settings()
	hints := parseHints(req.Hints)
	id := s.assignID(req.ReplacesID)

	if !cfg.AppEnabled(req.AppName, hints.DesktopEntry) {
		s.logger.Debug("notification dropped, app disabled",
			"app", req.AppName, "desktop_entry", hints.DesktopEntry, "id", id)
		return id
	}

	rule, _ := cfg.FindAppRule(req.AppName, hints.DesktopEntry)
	urgency := hints.Urgency
	if rule.UrgencyOverride != nil {
		urgency = Urgency(*rule.UrgencyOverride) //nolint:gosec // validated 0..2
	}

	n := Notification{
		ID:           id,
		AppName:      req.AppName,
		DesktopEntry: hints.DesktopEntry,
		Icon:         req.Icon,
		Summary:      req.Summary,
		Body:         req.Body,
		Content:      Ingest(req.Body, cfg.EnableLinks),
		Actions:      req.Actions,
		Urgency:      urgency,
		Timeout:      effectiveTimeout(req.ExpireTimeout, urgency, cfg, rule),
		Received:     time.Now(),
	}
	if evicted, ok := s.store.put(n); ok {
		s.stopTimer(evicted.ID)
	}
	s.schedule(n)

	s.logger.Debug("notification received",
		"id", id, "app", req.AppName, "urgency", urgency.String(),
		"rich", n.Content.Rich, "links", len(n.Content.Links))

	s.playSound(req.AppName, urgency, hints, cfg)
	for _, sink := range s.sinks {
		sink(n)
	}
	return id
}

// Close removes a notification and emits NotificationClosed. It reports
// whether the notification existed.
func (s *Server) Close(id uint32, reason CloseReason) bool {
	s.stopTimer(id)
	if _, ok := s.store.remove(id); !ok {
		return false
	}
	for _, sink := range s.closed {
		sink(id, reason)
	}
	if s.emitter != nil {
		if err := s.emitter.Emit(objectPath, interfaceName+".NotificationClosed", id, uint32(reason)); err != nil {
			s.logger.Warn("emit NotificationClosed failed", "id", id, "error", err)
		}
	}
	return true
}

// Notifications returns the stored notifications, oldest first.
func (s *Server) Notifications() []Notification {
	return s.store.list()
}

// Stop cancels pending expirations.
func (s *Server) Stop() {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Server) assignID(replaces uint32) uint32 {
	if replaces != 0 {
		if _, ok := s.store.get(replaces); ok {
			return replaces
		}
	}
	for {
		if id := s.nextID.Add(1); id != 0 {
			return id
		}
	}
}

func (s *Server) playSound(appName string, urgency Urgency, hints Hints, cfg *config.Config) {
	if s.sounds == nil || hints.SuppressSound || !cfg.Sounds.Enabled || cfg.DoNotDisturb {
		return
	}
	if !cfg.SoundEnabledForApp(appName, hints.DesktopEntry) {
		return
	}

	var req audio.Request
	switch {
	case hints.SoundFile != "":
		req = audio.File(hints.SoundFile)
	case hints.SoundName != "":
		req = audio.Theme(hints.SoundName)
	case urgency == UrgencyLow || cfg.Sounds.Default == "":
		return
	default:
		req = audio.Theme(cfg.Sounds.Default)
	}
	if err := s.sounds.RequestPlayback(req); err != nil {
		s.logger.Warn("notification sound rejected", "app", appName, "request", req.String(), "error", err)
	}
}

func (s *Server) schedule(n Notification) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if t, ok := s.timers[n.ID]; ok {
		t.Stop()
		delete(s.timers, n.ID)
	}
	if n.Timeout <= 0 {
		return
	}
	id := n.ID
	s.timers[id] = time.AfterFunc(n.Timeout, func() {
		s.Close(id, ReasonExpired)
	})
}

func (s *Server) stopTimer(id uint32) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// effectiveTimeout applies the app override, then the per-urgency cap.
// Negative requests take the cap as the default.
func effectiveTimeout(requested int32, urgency Urgency, cfg *config.Config, rule config.AppRule) time.Duration {
	if rule.TimeoutOverride != nil {
		return time.Duration(*rule.TimeoutOverride) * time.Millisecond
	}
	ms := requested
	limit := cfg.MaxTimeout(int(urgency))
	switch {
	case ms < 0:
		ms = limit
	case limit > 0 && ms > limit:
		ms = limit
	}
	return time.Duration(ms) * time.Millisecond
}

// dbusInterface exposes Server on the bus; only its methods are
// exported so helper methods on Server stay private to Go callers.
type dbusInterface struct {
	s *Server
}

func (d *dbusInterface) GetCapabilities() ([]string, *dbus.Error) {
	return d.s.Capabilities(), nil
}

func (d *dbusInterface) GetServerInformation() (name, vendor, version, spec string, err *dbus.Error) {
	return serverName, serverVendor, d.s.version, specVersion, nil
}

func (d *dbusInterface) Notify(
	appName string,
	replacesID uint32,
	appIcon, summary, body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	return d.s.Notify(Request{
		AppName:       appName,
		ReplacesID:    replacesID,
		Icon:          appIcon,
		Summary:       summary,
		Body:          body,
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout,
	}), nil
}

func (d *dbusInterface) CloseNotification(id uint32) *dbus.Error {
	d.s.Close(id, ReasonClosed)
	return nil
}
