package core

import (
	"context"
	"net"

	"github.com/cpacia/dashlink/api"
	"github.com/cpacia/dashlink/devicelink"
	"github.com/cpacia/dashlink/events"
	"github.com/cpacia/dashlink/notifications"
	"github.com/cpacia/dashlink/repo"
)

// NewNode constructs and returns a DashNode using the given cfg.
func NewNode(ctx context.Context, cfg *repo.Config) (*DashNode, error) {
	dashRepo, err := repo.NewRepo(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	var (
		bus    = events.NewBus()
		bridge = devicelink.NewBridge(bus)
	)

	engine, err := NewEngine(&Config{
		Bus:      bus,
		Device:   bridge,
		Settings: dashRepo.Settings(),
	})
	if err != nil {
		dashRepo.Close()
		return nil, err
	}
	bridge.RegisterHandler(devicelink.KindNotification, engine.HandleFrame)
	bridge.RegisterHandler(devicelink.KindData, engine.HandleAttributes)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", cfg.GatewayAddr)
	if err != nil {
		dashRepo.Close()
		return nil, err
	}

	node := &DashNode{
		Engine:   engine,
		repo:     dashRepo,
		bridge:   bridge,
		shutdown: make(chan struct{}),
	}

	gateway, err := api.NewGateway(node, &api.GatewayConfig{
		Listener:   listener,
		NoCors:     cfg.NoCors,
		AllowedIPs: cfg.AllowedIPSet(),
		Cookie:     cfg.APICookie,
		Username:   cfg.APIUsername,
		Password:   cfg.APIPassword,
		UseSSL:     cfg.UseSSL,
		SSLCert:    cfg.SSLCert,
		SSLKey:     cfg.SSLKey,
	}, bridge.ServeOption())
	if err != nil {
		listener.Close()
		dashRepo.Close()
		return nil, err
	}
	node.gateway = gateway

	opts := []notifications.Option{notifications.ShowPreviews(engine.ShowPreviews)}
	if cfg.DisableLog {
		opts = append(opts, notifications.DisableLog())
	}
	node.notifier = notifications.NewNotifier(bus, dashRepo.DB(), gateway.NotifyWebsockets, opts...)

	return node, nil
}
