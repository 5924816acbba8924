package main

import (
	"errors"
	"log"

	"golang.design/x/clipboard"
)

// clipboardWriter copies text to the system clipboard when one is
// available.
type clipboardWriter struct {
	err error
}

func newClipboardWriter() *clipboardWriter {
	err := clipboard.Init()
	if err != nil {
		log.Printf("Clipboard unavailable: %v", err)
	}
	return &clipboardWriter{err: err}
}

func (c *clipboardWriter) Write(data []byte) error {
	if c.err != nil {
		return errors.Join(errors.New("clipboard unavailable"), c.err)
	}
	clipboard.Write(clipboard.FmtText, data)
	return nil
}
