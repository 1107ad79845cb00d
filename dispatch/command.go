package dispatch

import (
	"context"
	"strings"

	"github.com/hrygo/maxbot/types"
)

// CommandFilter matches text commands in new messages. The accepted
// shape is "[@botname] <prefix><command> [arg ...]"; on a match the
// remaining words are injected into the event as Args.
type CommandFilter struct {
	commands       []string
	prefix         string
	caseSensitive  bool
	requireMention bool
}

// Command builds a filter matching any of the given commands with the
// default "/" prefix, case-insensitively.
func Command(commands ...string) *CommandFilter {
	return &CommandFilter{commands: commands, prefix: "/"}
}

// CommandStart matches the conventional "/start" command.
func CommandStart() *CommandFilter { return Command("start") }

// WithPrefix replaces the leading "/" with another single-rune prefix.
func (f *CommandFilter) WithPrefix(prefix string) *CommandFilter {
	f.prefix = prefix
	return f
}

// CaseSensitive makes the command comparison exact.
func (f *CommandFilter) CaseSensitive() *CommandFilter {
	f.caseSensitive = true
	return f
}

// RequireMention only matches when the message addresses the bot by
// username, as in "@mybot /start".
func (f *CommandFilter) RequireMention() *CommandFilter {
	f.requireMention = true
	return f
}

// Commands returns the commands this filter accepts.
func (f *CommandFilter) Commands() []string { return f.commands }

// Check implements Filter. It only ever matches message_created updates.
func (f *CommandFilter) Check(_ context.Context, ev *Event) (bool, map[string]any, error) {
	created, ok := ev.Update.(*types.MessageCreated)
	if !ok {
		return false, nil, nil
	}
	text := strings.TrimSpace(created.Message.Text())
	if text == "" {
		return false, nil, nil
	}

	mention, rest := splitMention(text)
	if f.requireMention {
		if mention == "" || ev.Bot == nil {
			return false, nil, nil
		}
		me := ev.Bot.Me()
		if me == nil || me.Username == nil || !strings.EqualFold(mention, *me.Username) {
			return false, nil, nil
		}
	}

	if !strings.HasPrefix(rest, f.prefix) {
		return false, nil, nil
	}
	fields := strings.Fields(rest[len(f.prefix):])
	if len(fields) == 0 {
		return false, nil, nil
	}
	command, args := fields[0], fields[1:]
	if !f.accepts(command) {
		return false, nil, nil
	}
	return true, map[string]any{"args": args, "command": command}, nil
}

func (f *CommandFilter) accepts(command string) bool {
	for _, c := range f.commands {
		if f.caseSensitive {
			if command == c {
				return true
			}
		} else if strings.EqualFold(command, c) {
			return true
		}
	}
	return false
}

// splitMention strips a leading "@username" token, returning the bare
// username and the remaining text.
func splitMention(text string) (mention, rest string) {
	if !strings.HasPrefix(text, "@") {
		return "", text
	}
	token, remainder, found := strings.Cut(text, " ")
	if !found {
		return "", text
	}
	return strings.TrimPrefix(token, "@"), strings.TrimSpace(remainder)
}
