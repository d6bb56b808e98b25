package resolver

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bitfsorg/libscan-go/analytics"
	"github.com/bitfsorg/libscan-go/bitpayid"
	"github.com/bitfsorg/libscan-go/config"
	"github.com/bitfsorg/libscan-go/dispatch"
	"github.com/bitfsorg/libscan-go/logging"
	"github.com/bitfsorg/libscan-go/paypro"
	"github.com/bitfsorg/libscan-go/redirect"
	"github.com/bitfsorg/libscan-go/tracking"
)

// Ports are the host application's collaborators.
type Ports struct {
	Navigator dispatch.Navigator
	Notifier  dispatch.Notifier
	Wallets   dispatch.WalletStore
	Proposals dispatch.ProposalBuilder
	Pairer    dispatch.Pairer
	Links     dispatch.LinkOpener
	Fiat      dispatch.FiatConverter
	Pairing   bitpayid.PairingStore
	// Registerer receives resolver metrics. Nil disables them.
	Registerer prometheus.Registerer
}

// Open builds a resolver from cfg. The returned closer releases the
// tracking database and the log file.
func Open(cfg config.Config, ports Ports) (*Resolver, io.Closer, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, nil, err
	}
	if ports.Navigator == nil {
		return nil, nil, errors.New("resolver: navigator is required")
	}

	logger, logFile, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	closers := multiCloser{logFile}

	store, err := tracking.OpenBoltStore(cfg.TrackingDB)
	if err != nil {
		_ = closers.Close()
		return nil, nil, err
	}
	closers = append(multiCloser{store}, closers...)

	var tracker analytics.Tracker = analytics.NoopTracker{}
	if ports.Registerer != nil {
		pt, err := analytics.NewPrometheusTracker(ports.Registerer)
		if err != nil {
			_ = closers.Close()
			return nil, nil, fmt.Errorf("resolver: metrics: %w", err)
		}
		tracker = pt
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	identity := bitpayid.NewClient(cfg.IdentityBaseURL(), cfg.HTTPTimeout)
	d := dispatch.New(dispatch.Deps{
		Navigator: ports.Navigator,
		Notifier:  ports.Notifier,
		Wallets:   ports.Wallets,
		Proposals: ports.Proposals,
		PayPro:    paypro.NewClient(httpClient, logging.Component(logger, "paypro")),
		Unlocker:  paypro.NewUnlocker(identity, ports.Pairing, cfg.Network, logging.Component(logger, "unlock")),
		Pairer:    ports.Pairer,
		Links:     ports.Links,
		Fiat:      ports.Fiat,
		Tracker:   tracker,
		Log:       logging.Component(logger, "dispatch"),
	})
	redirects := redirect.NewHandler(store, ports.Navigator,
		redirect.WithTracker(tracker),
		redirect.WithLogger(logging.Component(logger, "redirect")),
		redirect.WithEnv(envName(cfg.Network)),
	)

	r := New(d,
		WithRedirects(redirects),
		WithTracker(tracker),
		WithLogger(logging.Component(logger, "resolver")),
	)
	return r, closers, nil
}

func envName(network string) string {
	if network == config.NetworkTestnet {
		return "dev"
	}
	return "prod"
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
