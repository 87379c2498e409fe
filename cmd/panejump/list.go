package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/b/panejump/pkg/daemon"
	"github.com/b/panejump/pkg/keybind"
	"github.com/b/panejump/pkg/paths"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the pane list (normally opened in a popup by the daemon)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("list needs a terminal")
			}
			session, err := opts.resolveSession(cmd.Context())
			if err != nil {
				return err
			}
			return runList(cmd.Context(), paths.SocketPath(session))
		},
	}
}

func runList(ctx context.Context, socketPath string) error {
	client, err := daemon.Dial(ctx, socketPath)
	if err != nil {
		return err
	}
	defer client.Close()

	model := newListModel(client, colorProfileName(termenv.ColorProfile()))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	go receiveLoop(client, p)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("list: %w", err)
	}
	return nil
}

func colorProfileName(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "TrueColor"
	case termenv.ANSI:
		return "ANSI"
	case termenv.Ascii:
		return "Ascii"
	default:
		return "ANSI256"
	}
}

type renderMsg struct {
	payload daemon.RenderPayload
}

type hideMsg struct{}

type disconnectedMsg struct{}

// receiveLoop reads messages from the daemon
func receiveLoop(client *daemon.Client, p *tea.Program) {
	for {
		msg, err := client.Receive()
		if err != nil {
			p.Send(disconnectedMsg{})
			return
		}
		switch msg.Type {
		case daemon.MsgRender:
			var payload daemon.RenderPayload
			if ok, err := msg.Decode(&payload); ok && err == nil {
				p.Send(renderMsg{payload: payload})
			}
		case daemon.MsgHide:
			p.Send(hideMsg{})
		}
	}
}

// messageSender is the part of daemon.Client the list model writes to.
type messageSender interface {
	Send(t daemon.MessageType, payload any) error
}

type listModel struct {
	client       messageSender
	colorProfile string
	viewport     viewport.Model
	subscribed   bool
	sequenceNum  uint64
}

func newListModel(client messageSender, colorProfile string) listModel {
	return listModel{
		client:       client,
		colorProfile: colorProfile,
		viewport:     viewport.New(80, 24),
	}
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height
		size := daemon.ResizePayload{Width: msg.Width, Height: msg.Height, ColorProfile: m.colorProfile}
		if !m.subscribed {
			m.subscribed = true
			m.client.Send(daemon.MsgSubscribe, size)
		} else {
			m.client.Send(daemon.MsgResize, size)
		}
		return m, nil

	case renderMsg:
		m.sequenceNum = msg.payload.SequenceNum
		m.viewport.SetContent(msg.payload.Content)
		m.scrollTo(msg.payload.Selected)
		return m, nil

	case hideMsg, disconnectedMsg:
		m.client.Send(daemon.MsgUnsubscribe, nil)
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.client.Send(daemon.MsgUnsubscribe, nil)
			return m, tea.Quit
		}
		if key, ok := keyFromTea(msg); ok {
			m.client.Send(daemon.MsgInput, daemon.InputPayload{SequenceNum: m.sequenceNum, Key: key.String()})
		}
		return m, nil
	}
	return m, nil
}

// scrollTo keeps row visible.
func (m *listModel) scrollTo(row int) {
	if row < m.viewport.YOffset {
		m.viewport.SetYOffset(row)
	} else if h := m.viewport.Height; h > 0 && row >= m.viewport.YOffset+h {
		m.viewport.SetYOffset(row - h + 1)
	}
}

func (m listModel) View() string {
	return m.viewport.View()
}

var teaKeys = map[tea.KeyType]keybind.Key{
	tea.KeyUp:        keybind.Named(keybind.KeyUp),
	tea.KeyDown:      keybind.Named(keybind.KeyDown),
	tea.KeyLeft:      keybind.Named(keybind.KeyLeft),
	tea.KeyRight:     keybind.Named(keybind.KeyRight),
	tea.KeyShiftUp:   keybind.Named(keybind.KeyUp).WithShift(),
	tea.KeyShiftDown: keybind.Named(keybind.KeyDown).WithShift(),
	tea.KeyCtrlUp:    keybind.Named(keybind.KeyUp).WithCtrl(),
	tea.KeyCtrlDown:  keybind.Named(keybind.KeyDown).WithCtrl(),
	tea.KeyHome:      keybind.Named(keybind.KeyHome),
	tea.KeyEnd:       keybind.Named(keybind.KeyEnd),
	tea.KeyPgUp:      keybind.Named(keybind.KeyPageUp),
	tea.KeyPgDown:    keybind.Named(keybind.KeyPageDown),
	tea.KeyEnter:     keybind.Named(keybind.KeyEnter),
	tea.KeyEsc:       keybind.Named(keybind.KeyEsc),
	tea.KeyTab:       keybind.Named(keybind.KeyTab),
	tea.KeyShiftTab:  keybind.Named(keybind.KeyTab).WithShift(),
	tea.KeyBackspace: keybind.Named(keybind.KeyBackspace),
	tea.KeyDelete:    keybind.Named(keybind.KeyDelete),
	tea.KeyInsert:    keybind.Named(keybind.KeyInsert),
	tea.KeySpace:     keybind.Char(' '),
	tea.KeyF1:        keybind.Named(keybind.KeyF1),
	tea.KeyF2:        keybind.Named(keybind.KeyF2),
	tea.KeyF3:        keybind.Named(keybind.KeyF3),
	tea.KeyF4:        keybind.Named(keybind.KeyF4),
	tea.KeyF5:        keybind.Named(keybind.KeyF5),
	tea.KeyF6:        keybind.Named(keybind.KeyF6),
	tea.KeyF7:        keybind.Named(keybind.KeyF7),
	tea.KeyF8:        keybind.Named(keybind.KeyF8),
	tea.KeyF9:        keybind.Named(keybind.KeyF9),
	tea.KeyF10:       keybind.Named(keybind.KeyF10),
	tea.KeyF11:       keybind.Named(keybind.KeyF11),
	tea.KeyF12:       keybind.Named(keybind.KeyF12),
}

// keyFromTea converts a bubbletea key event into a key descriptor.
func keyFromTea(msg tea.KeyMsg) (keybind.Key, bool) {
	var key keybind.Key
	switch {
	case msg.Type == tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return keybind.Key{}, false
		}
		key = keybind.Char(msg.Runes[0])
	case msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ && msg.Type != tea.KeyTab && msg.Type != tea.KeyEnter:
		key = keybind.Char(rune('a' + int(msg.Type-tea.KeyCtrlA))).WithCtrl()
	default:
		k, ok := teaKeys[msg.Type]
		if !ok {
			return keybind.Key{}, false
		}
		key = k
	}
	if msg.Alt {
		key = key.WithAlt()
	}
	return key, true
}
