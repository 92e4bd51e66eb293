package main

import (
	"fmt"
	"io"
	"strings"

	"docqa-be/internal/dto"

	"github.com/fatih/color"
)

var (
	reasoningColor = color.New(color.FgHiBlack, color.Italic)
	responseColor  = color.New(color.FgGreen)
	labelColor     = color.New(color.FgCyan, color.Bold)
	errorColor     = color.New(color.FgRed)
)

func printAnswer(w io.Writer, answer *dto.AnswerResponse) {
	if reasoning := strings.TrimSpace(answer.Reasoning); reasoning != "" {
		labelColor.Fprintln(w, "Reasoning")
		reasoningColor.Fprintln(w, reasoning)
		fmt.Fprintln(w)
	}
	labelColor.Fprintln(w, "Answer")
	responseColor.Fprintln(w, answer.Response)
}

func printError(w io.Writer, err error) {
	errorColor.Fprintf(w, "error: %v\n", err)
}
