package discord

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	apperrors "github.com/PancyStudios/ArcaneBotGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
)

// Arg is a parsed prefix argument
type Arg struct {
	Type  discordgo.ApplicationCommandOptionType
	Value string
	Int   int64
}

// nextToken splits off the first whitespace separated word
func nextToken(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], strings.TrimLeftFunc(s[end:], unicode.IsSpace)
}

// ParseUserID accepts <@id>, <@!id> or a raw snowflake
func ParseUserID(token string) (string, bool) {
	id := token
	if strings.HasPrefix(id, "<@") && strings.HasSuffix(id, ">") {
		id = strings.TrimPrefix(id[2:len(id)-1], "!")
	}
	if len(id) < 15 || len(id) > 21 {
		return "", false
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", false
	}
	return id, true
}

// ParseArgs reads prefix arguments following the option schema. The last
// option, when it is a string, takes the rest of the line. Optional
// non-string options are skipped when the token does not fit them.
func ParseArgs(opts []*discordgo.ApplicationCommandOption, input string) (map[string]Arg, error) {
	args := make(map[string]Arg, len(opts))
	rest := strings.TrimSpace(input)

	for i, opt := range opts {
		if rest == "" {
			if opt.Required {
				return nil, apperrors.Input(fmt.Sprintf("Missing argument `%s`.", opt.Name))
			}
			continue
		}

		token, after := nextToken(rest)
		arg := Arg{Type: opt.Type}
		ok := true

		switch opt.Type {
		case discordgo.ApplicationCommandOptionUser:
			arg.Value, ok = ParseUserID(token)
		case discordgo.ApplicationCommandOptionInteger:
			n, err := strconv.ParseInt(token, 10, 64)
			arg.Value, arg.Int, ok = token, n, err == nil
		case discordgo.ApplicationCommandOptionString:
			if i == len(opts)-1 {
				token, after = rest, ""
			}
			arg.Value = token
		default:
			arg.Value = token
		}

		if !ok {
			if opt.Required {
				return nil, apperrors.Input(fmt.Sprintf("Invalid value `%s` for `%s`.", token, opt.Name))
			}
			continue
		}
		args[opt.Name] = arg
		rest = after
	}
	return args, nil
}
