package connection

import (
	"net"

	"github.com/Krajiyah/speaker-os/pkg/models"
	"github.com/bradfitz/slice"
	"github.com/pkg/errors"
)

// InterfaceLister enumerates the OS network interfaces, one snapshot per address
type InterfaceLister interface {
	Interfaces() ([]models.InterfaceSnapshot, error)
}

// NetLister reads interfaces from the kernel on every call
type NetLister struct{}

func (NetLister) Interfaces() ([]models.InterfaceSnapshot, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "listing interfaces")
	}
	ret := []models.InterfaceSnapshot{}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, errors.Wrapf(err, "listing addresses of %s", iface.Name)
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			family := models.IPv6
			if ipnet.IP.To4() != nil {
				family = models.IPv4
			}
			ret = append(ret, models.InterfaceSnapshot{
				Name:    iface.Name,
				Family:  family,
				Address: ipnet.IP.String(),
				MAC:     iface.HardwareAddr.String(),
				IsUp:    iface.Flags&net.FlagUp != 0,
			})
		}
	}
	sortSnapshots(ret)
	return ret, nil
}

func sortSnapshots(snapshots []models.InterfaceSnapshot) {
	slice.Sort(snapshots, func(i, j int) bool {
		if snapshots[i].Name != snapshots[j].Name {
			return snapshots[i].Name < snapshots[j].Name
		}
		if snapshots[i].Family != snapshots[j].Family {
			return snapshots[i].Family < snapshots[j].Family
		}
		return snapshots[i].Address < snapshots[j].Address
	})
}
