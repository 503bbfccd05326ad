// File: internal/cli/ctl.go
// Author: momentics <momentics@gmail.com>

package cli

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/momentics/cndevent/control"
	"github.com/momentics/cndevent/internal/service"
)

// CtlOptions holds flags for the ctl command.
type CtlOptions struct {
	Socket  string
	Timeout time.Duration
}

// NewCtlCommand creates the ctl command.
func NewCtlCommand() *cobra.Command {
	opts := &CtlOptions{}

	cmd := &cobra.Command{
		Use:   "ctl <command>",
		Short: "Send a command to a running daemon",
		Long: `Send one command to the control socket and print the reply.

Commands: ping, dump, stats, probes.

Example:
  cnd ctl ping
  cnd ctl --socket /tmp/cnd.sock dump`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCtl(opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Socket, "socket", control.DefaultConfig().Socket, "control socket path")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 5*time.Second, "dial and reply timeout")

	return cmd
}

func runCtl(opts *CtlOptions, command string, out io.Writer) error {
	command = strings.TrimSpace(command)
	if command == "" || strings.ContainsAny(command, "\r\n") {
		return fmt.Errorf("invalid command %q", command)
	}
	conn, err := net.DialTimeout("unix", opts.Socket, opts.Timeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", opts.Socket, err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(opts.Timeout)); err != nil {
		return err
	}

	if _, err := io.WriteString(conn, command+"\n"); err != nil {
		return fmt.Errorf("send command: %w", err)
	}
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read reply: %w", err)
		}
		if strings.TrimSuffix(line, "\n") == service.EndOfReply {
			break
		}
		if _, err := io.WriteString(out, line); err != nil {
			return err
		}
	}
	_, _ = io.WriteString(conn, "quit\n")
	return nil
}
