package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"talkbot/internal/config"
	"talkbot/internal/ipc"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var (
		socket  string
		timeout time.Duration
	)

	send := func(req ipc.Request) (ipc.Response, error) {
		resp, err := ipc.Send(socket, req, timeout)
		if err != nil {
			return resp, fmt.Errorf("talkbot not running: %w", err)
		}
		if resp.Error != "" {
			return resp, errors.New(resp.Error)
		}
		return resp, nil
	}

	root := &cobra.Command{
		Use:          "talkbot-ctl",
		Short:        "Talk to a running talkbot daemon",
		SilenceUsage: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&socket, "socket", "s", config.DefaultSocket, "Control socket path")
	root.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Request timeout")

	root.AddCommand(&cobra.Command{
		Use:   "ask <text>",
		Short: "Send text and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := send(ipc.Request{Cmd: ipc.CmdAsk, Text: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Reply)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "listen",
		Short: "Record a phrase on the daemon's microphone and print the reply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := send(ipc.Request{Cmd: ipc.CmdListen})
			if err != nil {
				return err
			}
			printExchange(cmd.OutOrStdout(), resp)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a wav/mp3/ogg file and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The daemon opens the file, so hand it an absolute path.
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			resp, err := send(ipc.Request{Cmd: ipc.CmdTranscribe, Path: path})
			if err != nil {
				return err
			}
			printExchange(cmd.OutOrStdout(), resp)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "chat",
		Short: "Chat line by line; 'quit' or EOF ends the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return chatLoop(cmd.InOrStdin(), cmd.OutOrStdout(), func(line string) (string, error) {
				resp, err := send(ipc.Request{Cmd: ipc.CmdAsk, Text: line})
				return resp.Reply, err
			})
		},
	})

	return root
}

func printExchange(w io.Writer, resp ipc.Response) {
	fmt.Fprintln(w, "You:", resp.Transcript)
	fmt.Fprintln(w, "Bot:", resp.Reply)
}

func chatLoop(in io.Reader, out io.Writer, ask func(string) (string, error)) error {
	fmt.Fprintln(out, "Talk to the bot. Type 'quit' to exit.")
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := scanner.Text()
		reply, err := ask(line)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Bot:", reply)

		if strings.EqualFold(strings.TrimSpace(line), "quit") {
			return nil
		}
	}
}
