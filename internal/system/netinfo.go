package system

import (
	"context"
	"net"
	"strings"
)

// NetInfo reports the address other devices on the network can reach the
// service at.
type NetInfo interface {
	IP(ctx context.Context) (string, error)
}

type NoopNetInfo struct{}

func (NoopNetInfo) IP(ctx context.Context) (string, error) { return "", nil }

// InterfaceNetInfo picks the first non-loopback IPv4 address of an up
// interface.
type InterfaceNetInfo struct{}

func (InterfaceNetInfo) IP(ctx context.Context) (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipNet.IP.To4(); ip4 != nil {
				return ip4.String(), nil
			}
		}
	}
	return "", nil
}

// ServiceURL joins a reachable host with the port of listenAddr. An empty
// host falls back to localhost.
func ServiceURL(host, listenAddr string) string {
	_, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		port = strings.TrimPrefix(listenAddr, ":")
	}
	if host == "" {
		host = "localhost"
	}
	if port == "" || port == "80" {
		return "http://" + host
	}
	return "http://" + net.JoinHostPort(host, port)
}
