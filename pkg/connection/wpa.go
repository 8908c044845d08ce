package connection

import (
	"context"
	"sync"
	"time"

	"github.com/Krajiyah/speaker-os/pkg/models"
	"github.com/Krajiyah/speaker-os/pkg/util"
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	wpaService   = "fi.w1.wpa_supplicant1"
	wpaPath      = dbus.ObjectPath("/fi/w1/wpa_supplicant1")
	wpaInterface = "fi.w1.wpa_supplicant1.Interface"

	wpaStateCompleted         = "completed"
	defaultAssociationTimeout = 30 * time.Second
	defaultStatePoll          = 500 * time.Millisecond
)

// Associator joins the wifi network described by a credential
type Associator interface {
	Associate(ctx context.Context, cred models.Credential) error
}

type busObject interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
	GetProperty(p string) (dbus.Variant, error)
}

// WPASupplicant associates through wpa_supplicant's D-Bus API. The device keeps a
// single configured network: a successful association removes the previous one, a
// failed one is removed and the previous network is selected again.
type WPASupplicant struct {
	ifname  string
	timeout time.Duration
	poll    time.Duration
	object  func(path dbus.ObjectPath) (busObject, error)
	mutex   sync.Mutex
}

func NewWPASupplicant(ifname string, timeout time.Duration) *WPASupplicant {
	if timeout <= 0 {
		timeout = defaultAssociationTimeout
	}
	return &WPASupplicant{ifname: ifname, timeout: timeout, poll: defaultStatePoll, object: systemBusObject}
}

func systemBusObject(path dbus.ObjectPath) (busObject, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, errors.Wrap(err, "connecting to system bus")
	}
	return conn.Object(wpaService, path), nil
}

func (w *WPASupplicant) Associate(ctx context.Context, cred models.Credential) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	iface, err := w.interfaceObject(ctx)
	if err != nil {
		return err
	}
	previous := currentNetwork(iface)

	var network dbus.ObjectPath
	if err := iface.CallWithContext(ctx, wpaInterface+".AddNetwork", 0, networkArgs(cred)).Store(&network); err != nil {
		return errors.Wrap(err, "AddNetwork")
	}
	if err := iface.CallWithContext(ctx, wpaInterface+".SelectNetwork", 0, network).Err; err != nil {
		w.restore(ctx, iface, network, previous)
		return errors.Wrap(err, "SelectNetwork")
	}
	err = util.Timeout(ctx, w.timeout, func(ctx context.Context) error {
		return w.waitCompleted(ctx, iface, network)
	})
	if err != nil {
		w.restore(ctx, iface, network, previous)
		return errors.Wrapf(err, "waiting for %s", w.ifname)
	}
	if previous.IsValid() && previous != "/" && previous != network {
		if err := iface.CallWithContext(ctx, wpaInterface+".RemoveNetwork", 0, previous).Err; err != nil {
			log.Warn().Err(err).Str("component", "wpa").Msg("could not remove previous network")
		}
	}
	if err := iface.CallWithContext(ctx, wpaInterface+".SaveConfig", 0).Err; err != nil {
		log.Debug().Err(err).Str("component", "wpa").Msg("SaveConfig")
	}
	return nil
}

func (w *WPASupplicant) interfaceObject(ctx context.Context) (busObject, error) {
	root, err := w.object(wpaPath)
	if err != nil {
		return nil, err
	}
	var path dbus.ObjectPath
	if err := root.CallWithContext(ctx, wpaService+".GetInterface", 0, w.ifname).Store(&path); err != nil {
		return nil, errors.Wrapf(err, "GetInterface %s", w.ifname)
	}
	return w.object(path)
}

func (w *WPASupplicant) waitCompleted(ctx context.Context, iface busObject, network dbus.ObjectPath) error {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()
	for {
		if currentNetwork(iface) == network && interfaceState(iface) == wpaStateCompleted {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *WPASupplicant) restore(ctx context.Context, iface busObject, failed dbus.ObjectPath, previous dbus.ObjectPath) {
	if err := iface.CallWithContext(ctx, wpaInterface+".RemoveNetwork", 0, failed).Err; err != nil {
		log.Warn().Err(err).Str("component", "wpa").Msg("could not remove rejected network")
	}
	if !previous.IsValid() || previous == "/" {
		return
	}
	if err := iface.CallWithContext(ctx, wpaInterface+".SelectNetwork", 0, previous).Err; err != nil {
		log.Warn().Err(err).Str("component", "wpa").Msg("could not reselect previous network")
	}
}

func networkArgs(cred models.Credential) map[string]dbus.Variant {
	args := map[string]dbus.Variant{
		"ssid": dbus.MakeVariant(cred.SSID),
	}
	if cred.PSK == "" {
		args["key_mgmt"] = dbus.MakeVariant("NONE")
	} else {
		args["key_mgmt"] = dbus.MakeVariant("WPA-PSK")
		args["psk"] = dbus.MakeVariant(cred.PSK)
	}
	return args
}

func currentNetwork(iface busObject) dbus.ObjectPath {
	v, err := iface.GetProperty(wpaInterface + ".CurrentNetwork")
	if err != nil {
		return ""
	}
	path, _ := v.Value().(dbus.ObjectPath)
	return path
}

func interfaceState(iface busObject) string {
	v, err := iface.GetProperty(wpaInterface + ".State")
	if err != nil {
		return ""
	}
	state, _ := v.Value().(string)
	return state
}
