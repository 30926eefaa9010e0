package httpx

import (
	"errors"
	"net"
	"os"
	"runtime"
	"strconv"
	"syscall"

	"github.com/teleconsult/signal/pkg/logger"
)

const maxPortRollAttempts = 42

type Listener struct {
	net.Listener
}

// NewListener opens a TCP listener, with the rollPorts param it
// tries the next ports when the port is already in use.
func NewListener(address string, rollPorts bool, log *logger.Logger) (*Listener, error) {
	ls, err := net.Listen("tcp", address)
	if err == nil {
		return &Listener{ls}, nil
	}
	if !rollPorts || !isErrorAddressAlreadyInUse(err) {
		return nil, err
	}
	host, port := splitHostPort(address)
	for i := port + 1; i < port+maxPortRollAttempts; i++ {
		log.Debug().Msgf("Port roll %v:%v", host, i)
		ls, err = net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(i)))
		if err == nil {
			return &Listener{ls}, nil
		}
	}
	return nil, err
}

func (l Listener) GetPort() int {
	if l.Listener == nil {
		return 0
	}
	tcp, ok := l.Addr().(*net.TCPAddr)
	if !ok || tcp == nil {
		return 0
	}
	return tcp.Port
}

func isErrorAddressAlreadyInUse(err error) bool {
	var eOsSyscall *os.SyscallError
	if !errors.As(err, &eOsSyscall) {
		return false
	}
	var errErrno syscall.Errno
	if !errors.As(eOsSyscall, &errErrno) {
		return false
	}
	if errErrno == syscall.EADDRINUSE {
		return true
	}
	const WSAEADDRINUSE = 10048
	if runtime.GOOS == "windows" && errErrno == WSAEADDRINUSE {
		return true
	}
	return false
}
