package collect

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/newtron-network/newtverify/pkg/lab"
	"github.com/newtron-network/newtverify/pkg/util"
)

// DefaultSSHPort is used when SSHOutputSource.Port is zero.
const DefaultSSHPort = 22

// commandRunner runs show commands on one device.
type commandRunner interface {
	Run(cmd string) (string, error)
	Close() error
}

// SSHOutputSource captures lab command output by running each command over
// SSH on every host that has an expectation for it. Hosts are visited one
// after another, each over its own connection.
type SSHOutputSource struct {
	User     string
	Password string
	Port     int
	Timeout  time.Duration

	// Addrs maps hostnames to the address to dial. Hosts not listed are
	// dialed by name.
	Addrs map[string]string

	dial func(ctx context.Context, addr string) (commandRunner, error)
}

// FetchOutput runs the lab's commands and returns their raw output. A
// command that exits non-zero keeps whatever it printed; failing to reach
// a host fails the whole fetch.
func (s *SSHOutputSource) FetchOutput(ctx context.Context, def *lab.Definition) (map[lab.OutputKey]string, error) {
	dial := s.dial
	if dial == nil {
		dial = s.dialSSH
	}

	out := make(map[lab.OutputKey]string)
	for _, host := range def.Hosts() {
		cmds := def.CommandsFor(host)
		if len(cmds) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log := util.WithHost(host).WithField("lab", def.ID)
		runner, err := dial(ctx, s.addr(host))
		if err != nil {
			return nil, fmt.Errorf("connecting to %s: %w", host, err)
		}

		for _, cmd := range cmds {
			if err := ctx.Err(); err != nil {
				runner.Close()
				return nil, err
			}
			text, err := runner.Run(cmd)
			if err != nil {
				log.WithError(err).Warnf("Command %q failed", cmd)
			} else {
				log.Debugf("Captured %q (%d bytes)", cmd, len(text))
			}
			out[lab.Key(host, cmd)] = text
		}
		runner.Close()
	}
	return out, nil
}

func (s *SSHOutputSource) addr(host string) string {
	a := host
	if mapped, ok := s.Addrs[host]; ok && mapped != "" {
		a = mapped
	}
	if _, _, err := net.SplitHostPort(a); err == nil {
		return a
	}
	port := s.Port
	if port == 0 {
		port = DefaultSSHPort
	}
	return net.JoinHostPort(a, strconv.Itoa(port))
}

func (s *SSHOutputSource) clientConfig() *ssh.ClientConfig {
	password := s.Password
	return &ssh.ClientConfig{
		User: s.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			// Network OS images often offer only keyboard-interactive.
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		// Lab devices; host keys are not pinned.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         s.Timeout,
	}
}

func (s *SSHOutputSource) dialSSH(ctx context.Context, addr string) (commandRunner, error) {
	d := net.Dialer{Timeout: s.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", addr, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, s.clientConfig())
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SSH handshake %s: %w", addr, err)
	}
	return &sshRunner{client: ssh.NewClient(c, chans, reqs)}, nil
}

type sshRunner struct {
	client *ssh.Client
}

// Run executes cmd in a fresh session and returns its combined output with
// trailing whitespace removed.
func (r *sshRunner) Run(cmd string) (string, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	output, err := session.CombinedOutput(cmd)
	text := strings.TrimRight(string(output), " \t\r\n")
	if err != nil {
		return text, fmt.Errorf("SSH exec '%s': %w", cmd, err)
	}
	return text, nil
}

func (r *sshRunner) Close() error {
	return r.client.Close()
}
