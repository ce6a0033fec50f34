package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/randalmurphal/eventstream/pkg/eventstream"
)

// printer writes each event it receives as one JSON line.
type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printer) Handle(_ context.Context, evt eventstream.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

func (p *printer) SubscriberName() string {
	return "printer"
}
