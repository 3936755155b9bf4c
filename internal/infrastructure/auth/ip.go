package auth

import "net"

// IsIPAllowed IPアドレスが許可リスト（単一IPまたはCIDR）に含まれるか
func IsIPAllowed(ip string, allowed []string) bool {
	addr := net.ParseIP(ip)
	if addr == nil {
		return false
	}
	for _, entry := range allowed {
		if _, network, err := net.ParseCIDR(entry); err == nil {
			if network.Contains(addr) {
				return true
			}
			continue
		}
		if allowedIP := net.ParseIP(entry); allowedIP != nil && allowedIP.Equal(addr) {
			return true
		}
	}
	return false
}
