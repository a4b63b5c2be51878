package notify

import (
	"context"
	"fmt"
	"text/template"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/jy02140251/deploy-watcher/internal/probe"
)

// Shoutrrr delivers to any Shoutrrr service URL (telegram, discord, smtp,
// ...) with the message rendered through a configurable template.
type Shoutrrr struct {
	sender *router.ServiceRouter
	tmpl   *template.Template
}

// NewShoutrrr validates the service URL and parses the message template.
func NewShoutrrr(url, tmplStr string) (*Shoutrrr, error) {
	sender, err := shoutrrr.CreateSender(url)
	if err != nil {
		return nil, fmt.Errorf("creating shoutrrr sender: %w", err)
	}

	tmpl, err := ParseTemplate(tmplStr)
	if err != nil {
		return nil, err
	}

	return &Shoutrrr{sender: sender, tmpl: tmpl}, nil
}

func (s *Shoutrrr) Name() string { return "shoutrrr" }

func (s *Shoutrrr) Send(ctx context.Context, message string, results []probe.Result) error {
	msg, err := Render(s.tmpl, message, results)
	if err != nil {
		return err
	}

	params := types.Params{}
	for _, err := range s.sender.Send(msg, &params) {
		if err != nil {
			return fmt.Errorf("sending via shoutrrr: %w", err)
		}
	}
	return nil
}
