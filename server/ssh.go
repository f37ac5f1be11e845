// Package server exposes the game over the network: single player sessions
// over SSH and a read-only HTTP view for spectators.
package server

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"os"
	"sync"

	"pythons/game"
	"pythons/ui/terminal"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/terminfo"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// GameFactory builds a fresh game for one session, logging to l.
type GameFactory func(l *log.Logger) (*game.Game, error)

type SSHConfig struct {
	Address            string
	HostKey            ssh.Signer
	Password           string // empty accepts any password
	AuthorizedKeysFile string // optional
}

type SSHServer struct {
	config    *ssh.ServerConfig
	address   string
	newGame   GameFactory
	publisher Publisher
	log       *log.Logger
}

// LoadHostKey reads a PEM encoded private key.
func LoadHostKey(path string) (ssh.Signer, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read host key")
	}
	key, err := ssh.ParsePrivateKey(bytes)
	if err != nil {
		return nil, errors.Wrapf(err, "parse host key %s", path)
	}
	return key, nil
}

func loadAuthorizedKeys(path string) (map[string]bool, error) {
	authorizedKeys := map[string]bool{}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read authorized keys from %s", path)
	}
	for len(bytes) > 0 {
		publicKey, _, _, nextline, err := ssh.ParseAuthorizedKey(bytes)
		if err != nil {
			return nil, errors.Wrapf(err, "parse authorized keys from %s", path)
		}
		authorizedKeys[string(publicKey.Marshal())] = true
		bytes = nextline
	}
	return authorizedKeys, nil
}

// NewSSHServer prepares a server; publisher may be nil.
func NewSSHServer(cfg SSHConfig, newGame GameFactory, publisher Publisher, l *log.Logger) (*SSHServer, error) {
	if cfg.HostKey == nil {
		return nil, errors.New("ssh: no host key")
	}

	serverConfig := &ssh.ServerConfig{
		PasswordCallback: func(conn ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			if len(cfg.Password) != 0 && cfg.Password != string(password) {
				return nil, errors.New("wrong password")
			}
			return nil, nil
		},
	}
	if len(cfg.AuthorizedKeysFile) > 0 {
		authorizedKeys, err := loadAuthorizedKeys(cfg.AuthorizedKeysFile)
		if err != nil {
			return nil, err
		}
		serverConfig.PublicKeyCallback = func(conn ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if !authorizedKeys[string(key.Marshal())] {
				return nil, errors.New("unknown key")
			}
			return nil, nil
		}
	}
	serverConfig.AddHostKey(cfg.HostKey)

	return &SSHServer{
		config:    serverConfig,
		address:   cfg.Address,
		newGame:   newGame,
		publisher: publisher,
		log:       l,
	}, nil
}

// ListenAndServe listens on the configured address until ctx ends.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return errors.Wrap(err, "ssh listen")
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx ends; the listener is
// closed on return.
func (s *SSHServer) Serve(ctx context.Context, listener net.Listener) error {
	s.log.Printf("SSH server listening on %s", listener.Addr())
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		rawconn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Print(err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConn(ctx, rawconn)
		}()
	}
}

func (s *SSHServer) handleConn(ctx context.Context, rawconn net.Conn) {
	conn, chans, reqs, err := ssh.NewServerConn(rawconn, s.config)
	if err != nil {
		s.log.Printf("ssh connection handshake failed: %s", err.Error())
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	s.log.Printf("[user=%#v] connection established, addr=%#v, session-id=0x%s...",
		conn.User(), conn.RemoteAddr().String(), hex.EncodeToString(conn.SessionID()[:12]))
	go ssh.DiscardRequests(reqs)

	for channelreq := range chans {
		if channelreq.ChannelType() != "session" {
			channelreq.Reject(ssh.UnknownChannelType, "Unknown Channel Type")
			continue
		}

		channel, reqs, err := channelreq.Accept()
		if err != nil {
			s.log.Print(err)
			return
		}

		user := &UserConnection{
			Channel:    channel,
			Connection: conn,
			User:       conn.User(),
		}
		s.log.Printf("[user=%#v] session established", user.User)
		go s.handleRequests(ctx, user, reqs)
	}
}

func (s *SSHServer) handleRequests(ctx context.Context, user *UserConnection, reqs <-chan *ssh.Request) {
	for req := range reqs {
		switch req.Type {
		case "shell":
			screen, err := user.screen()
			if err != nil {
				s.log.Printf("[shell:user=%#v] error: %s", user.User, err.Error())
				req.Reply(false, nil)
				continue
			}
			req.Reply(true, nil)
			go s.play(ctx, user, screen)
		case "pty-req":
			term, width, height, ok := parsePtyRequest(req.Payload)
			if !ok {
				s.log.Printf("[pty-req:user=%#v] invalid request payload", user.User)
				req.Reply(false, nil)
				continue
			}
			user.setTerm(term, width, height)
			req.Reply(true, nil)
			s.log.Printf("[user=%#v] terminal: %s, size: %dx%d", user.User, term, width, height)
		case "window-change":
			width, height, ok := parseWindowChange(req.Payload)
			if !ok {
				s.log.Printf("[window-change:user=%#v] invalid window change request", user.User)
				req.Reply(false, nil)
				continue
			}
			user.resize(width, height)
			req.Reply(true, nil)
		default:
			s.log.Printf("[user=%#v] unknown req.Type %q", user.User, req.Type)
			if req.WantReply {
				req.Reply(false, nil)
			}
		}
	}
}

// play runs one game on the session's screen and hangs up afterwards.
func (s *SSHServer) play(ctx context.Context, user *UserConnection, screen tcell.Screen) {
	l := log.New(s.log.Writer(), fmt.Sprintf("%s[user:%#v] ", s.log.Prefix(), user.User), s.log.Flags())
	defer func() {
		// Fini waits for the input loop, whose read only returns once
		// the connection is gone.
		user.Close()
		user.Connection.Close()
		screen.Fini()
		l.Print("session closed")
	}()

	g, err := s.newGame(l)
	if err != nil {
		l.Printf("cannot start game: %s", err.Error())
		return
	}

	var observe func(game.Snapshot)
	if s.publisher != nil {
		observe = Observe(s.publisher, g)
	}
	if err := terminal.Play(ctx, g, screen, observe); err != nil && !errors.Is(err, context.Canceled) {
		l.Print(err)
	}
	stats := g.Stats()
	l.Printf("left after %d runs, best score %d", stats.Runs, stats.HighScore)
}

// UserConnection is one SSH session acting as the tty of a tcell screen.
type UserConnection struct {
	ssh.Channel
	Connection *ssh.ServerConn
	User       string

	mu             sync.Mutex
	term           string
	termWidth      int
	termHeight     int
	resizeCallback func()
}

func (uc *UserConnection) screen() (tcell.Screen, error) {
	uc.mu.Lock()
	term := uc.term
	uc.mu.Unlock()

	ti, err := terminfo.LookupTerminfo(term)
	if err != nil {
		return nil, err
	}
	screen, err := tcell.NewTerminfoScreenFromTtyTerminfo(uc, ti)
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "screen.Init")
	}
	return screen, nil
}

func (uc *UserConnection) setTerm(term string, width, height int) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.term = term
	uc.termWidth = width
	uc.termHeight = height
}

func (uc *UserConnection) resize(width, height int) {
	uc.mu.Lock()
	uc.termWidth = width
	uc.termHeight = height
	cb := uc.resizeCallback
	uc.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (uc *UserConnection) Start() error {
	return nil
}

func (uc *UserConnection) Stop() error {
	return nil
}

func (uc *UserConnection) Drain() error {
	return nil
}

func (uc *UserConnection) NotifyResize(callback func()) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.resizeCallback = callback
}

func (uc *UserConnection) WindowSize() (int, int, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.termWidth, uc.termHeight, nil
}

// parsePtyRequest decodes the leading fields of an RFC 4254 pty-req.
func parsePtyRequest(payload []byte) (string, int, int, bool) {
	term, bytes, ok1 := parseString(payload)
	width, bytes, ok2 := parseUint32(bytes)
	height, _, ok3 := parseUint32(bytes)
	if !ok1 || !ok2 || !ok3 {
		return "", 0, 0, false
	}
	return term, int(width), int(height), true
}

func parseWindowChange(payload []byte) (int, int, bool) {
	width, bytes, ok1 := parseUint32(payload)
	height, _, ok2 := parseUint32(bytes)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return int(width), int(height), true
}

func parseString(in []byte) (string, []byte, bool) {
	length, tail, ok := parseUint32(in)
	if !ok || uint32(len(tail)) < length {
		return "", nil, false
	}

	return string(tail[:length]), tail[length:], true
}

func parseUint32(in []byte) (uint32, []byte, bool) {
	if len(in) < 4 {
		return 0, nil, false
	}
	return binary.BigEndian.Uint32(in), in[4:], true
}
