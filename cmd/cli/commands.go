package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"docqa-be/internal/bootstrap"
	"docqa-be/internal/config"
	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/service"
	"docqa-be/pkg/events"
	pktNats "docqa-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// withContainer logs to the file only so stdout carries nothing but answers.
func withContainer(cfg *config.Config, run func(ctx context.Context, c *bootstrap.Container) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap.NewContainer(cfg, bootstrap.WithLogger(logger.NewIsolatedLogger(cfg.App.LogFilePath)))
	if err != nil {
		return err
	}
	defer container.Close()
	return run(ctx, container)
}

func ingestCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file.pdf>...",
		Short: "Index PDF files into the vector store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]dto.UploadedFile, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				files = append(files, dto.UploadedFile{Name: filepath.Base(path), Data: data})
			}

			return withContainer(config.Load(), func(ctx context.Context, c *bootstrap.Container) error {
				uploaded, err := c.IngestionService.Ingest(ctx, files)
				if err != nil {
					return err
				}
				if !uploaded {
					return errors.New("no readable text found in the given files")
				}
				color.Green("Indexed %d file(s)", len(files))
				return nil
			})
		},
	}
}

func askCMD() *cobra.Command {
	var threadID string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return withContainer(config.Load(), func(ctx context.Context, c *bootstrap.Container) error {
				answer, err := c.ChatService.Ask(ctx, &dto.AskRequest{ThreadId: threadID, Question: question})
				if err != nil {
					return err
				}
				printAnswer(cmd.OutOrStdout(), answer)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&threadID, "thread", "t", "", "conversation thread id")
	return cmd
}

func chatCMD() *cobra.Command {
	var threadID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation (/reset clears it, /exit quits)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(config.Load(), func(ctx context.Context, c *bootstrap.Container) error {
				return chatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), threadID, c.ChatService)
			})
		},
	}
	cmd.Flags().StringVarP(&threadID, "thread", "t", "", "conversation thread id")
	return cmd
}

func chatLoop(ctx context.Context, in io.Reader, out io.Writer, threadID string, chat service.IChatService) error {
	scanner := bufio.NewScanner(in)
	for {
		labelColor.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			if err := chat.Reset(ctx, threadID); err != nil {
				printError(out, err)
			} else {
				fmt.Fprintln(out, "conversation cleared")
			}
			continue
		}

		answer, err := chat.Ask(ctx, &dto.AskRequest{ThreadId: threadID, Question: line})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			printError(out, err)
			continue
		}
		printAnswer(out, answer)
		fmt.Fprintln(out)
	}
}

func watchCMD() *cobra.Command {
	var eventType string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream ingestion and turn events from NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.App.NatsURL == "" {
				return errors.New("NATS_URL is not set")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			out := cmd.OutOrStdout()
			cc, err := sub.Subscribe(ctx, eventType, "", func(_ context.Context, e events.Event) error {
				printEvent(out, e)
				return nil
			})
			if err != nil {
				return err
			}
			defer cc.Stop()

			labelColor.Fprintf(out, "watching %s events, ctrl-c to stop\n", eventType)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVarP(&eventType, "event", "e", ">", "event type to follow, e.g. turn.completed")
	return cmd
}

func printEvent(w io.Writer, e events.Event) {
	labelColor.Fprintf(w, "%s ", e.Timestamp().Format("15:04:05"))
	fmt.Fprintf(w, "%s %v\n", e.EventType(), e.Payload())
}
