package core

import (
	"fmt"
	"sync"

	"github.com/cpacia/dashlink/api"
	"github.com/cpacia/dashlink/core/coreiface"
	"github.com/cpacia/dashlink/database"
	"github.com/cpacia/dashlink/devicelink"
	"github.com/cpacia/dashlink/models"
	"github.com/cpacia/dashlink/notifications"
	"github.com/cpacia/dashlink/repo"
)

// DashNode holds all the components that make up the notification hub. It
// also exposes an exported API which can be used to control the node.
type DashNode struct {
	*Engine

	// repo holds the database and data directory.
	repo *repo.Repo

	// bridge is the websocket endpoint the Bluetooth transport daemon
	// attaches to.
	bridge *devicelink.Bridge

	// notifier writes the activity log and pushes events to websocket
	// clients.
	notifier *notifications.Notifier

	// gateway serves the dashboard API. It is nil for mock nodes.
	gateway *api.Gateway

	// shutdown is closed when the node is stopped. Any listening
	// goroutines can use this to terminate.
	shutdown chan struct{}
	stopOnce sync.Once
}

var _ coreiface.CoreIface = (*DashNode)(nil)

// Start gets the node up and running.
func (n *DashNode) Start() {
	go n.notifier.Start()
	<-n.notifier.Ready()
	n.Engine.Start()
	if n.gateway != nil {
		go func() {
			if err := n.gateway.Serve(); err != nil {
				select {
				case <-n.shutdown:
				default:
					log.Errorf("Gateway stopped: %s", err)
				}
			}
		}()
	}
}

// Stop cleanly shuts down the DashNode and signals to any listening
// goroutines that it's time to stop. Preferences still waiting to be
// written are flushed before the database is closed.
func (n *DashNode) Stop() {
	n.stopOnce.Do(func() {
		close(n.shutdown)
		if n.gateway != nil {
			if err := n.gateway.Close(); err != nil {
				log.Errorf("Error closing gateway: %s", err)
			}
		}
		if err := n.bridge.Close(); err != nil {
			log.Errorf("Error closing device bridge: %s", err)
		}
		n.notifier.Stop()
		n.Engine.Stop()
		if err := n.repo.Close(); err != nil {
			log.Errorf("Error closing repo: %s", err)
		}
	})
}

// DestroyNode shuts down the node and deletes the entire data directory.
// This should only be used during testing as destroying a live node will
// result in data loss.
func (n *DashNode) DestroyNode() {
	n.Stop()
	if err := n.repo.DestroyRepo(); err != nil {
		log.Errorf("Error destroying repo: %s", err)
	}
}

// DeviceBridge returns the endpoint the transport daemon connects to.
func (n *DashNode) DeviceBridge() *devicelink.Bridge {
	return n.bridge
}

// DeviceConnected reports whether the phone's transport is attached.
func (n *DashNode) DeviceConnected() bool {
	return n.bridge.Connected()
}

// ActivityLog returns the most recent activity log entries, newest first.
// A limit of zero returns every entry.
func (n *DashNode) ActivityLog(limit int) ([]models.NotificationLog, error) {
	entries := []models.NotificationLog{}
	err := n.repo.DB().View(func(tx database.Tx) error {
		q := tx.Read().Order("timestamp desc")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Find(&entries).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", coreiface.ErrInternalServer, err)
	}
	return entries, nil
}
