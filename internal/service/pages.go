package service

import (
	"context"

	"github.com/quantumrocket/quantumrocket/internal/model"
	"github.com/quantumrocket/quantumrocket/internal/repository"
)

// Page help keys in the things table.
const (
	HelpIndex     = "page.index.help"
	HelpDashboard = "page.dashboard.help"
	HelpMyProfile = "page.my_profile.help"
	HelpMyWidgets = "page.my_widgets.help"
)

// PageHelp is the help panel of a page. Show is false when the signed-in
// user turned help off.
type PageHelp struct {
	Key  string `json:"key"`
	Text string `json:"text"`
	Show bool   `json:"show"`
}

type PageService struct {
	things *repository.ThingRepository
}

func NewPageService(repos *repository.Repositories) *PageService {
	return &PageService{things: repos.Things}
}

// Help returns the help text for key. Anonymous visitors always see it.
func (p *PageService) Help(ctx context.Context, key string, user *model.User) (*PageHelp, error) {
	help := &PageHelp{Key: key, Show: user == nil || user.ShowPageHelp}

	thing, err := p.things.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if thing != nil {
		help.Text = thing.Value
	}
	return help, nil
}

// AllHelp returns every page help entry, keyed by page.
func (p *PageService) AllHelp(ctx context.Context) (map[string]string, error) {
	things, err := p.things.GetLike(ctx, "page.%.help")
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(things))
	for _, t := range things {
		out[t.Key] = t.Value
	}
	return out, nil
}
