// Network stack glue between the link driver and the Barrier session.
// https://github.com/hidbridge/barrierkvm
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package transport

import (
	"fmt"
	"net"

	"gvisor.dev/gvisor/pkg/tcpip"
	"gvisor.dev/gvisor/pkg/tcpip/adapters/gonet"
	"gvisor.dev/gvisor/pkg/tcpip/network/ipv4"
	"gvisor.dev/gvisor/pkg/tcpip/stack"
)

// Dial opens a TCP connection to addr (host, port) through the
// user-space network stack s, the same stack the link driver (Wi-Fi
// or Ethernet bring-up, an external collaborator to this core) has
// already configured with an interface address and route. It returns
// a plain net.Conn so callers above the link layer — session.Dial's
// counterpart for boards with no host TCP/IP stack — never need to
// know which implementation is underneath.
func Dial(s *stack.Stack, addr net.TCPAddr) (net.Conn, error) {
	remote := tcpip.FullAddress{
		Addr: tcpip.AddrFromSlice(addr.IP.To4()),
		Port: uint16(addr.Port),
	}
	conn, err := gonet.DialTCP(s, remote, ipv4.ProtocolNumber)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr.String(), err)
	}
	return conn, nil
}
