package vantha

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// pollMaxOptions is Discord's practical cap: one reaction per option and
// ten keycap emojis to react with.
const pollMaxOptions = 10

var pollNumberEmojis = []string{
	"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟",
}

// parsePollOptions splits a comma-separated option list, dropping empty
// entries. An empty or missing list means a yes/no poll.
func parsePollOptions(raw string) []string {
	var options []string
	for _, opt := range strings.Split(raw, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		options = append(options, opt)
	}
	return options
}

func (d *Discord) handlePoll(
	ctx context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	question := opts["question"].StringValue()

	var options []string
	if opt, ok := opts["options"]; ok {
		options = parsePollOptions(opt.StringValue())
	}
	switch {
	case len(options) == 1:
		d.respond(s, i, "❌ A poll needs at least two options.", true)
		return
	case len(options) > pollMaxOptions:
		d.respond(
			s, i,
			fmt.Sprintf("❌ At most %d options per poll.", pollMaxOptions),
			true,
		)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "📊 " + question,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Vote by reacting below",
		},
	}
	reactions := []string{"👍", "👎"}
	if len(options) > 0 {
		var lines []string
		reactions = reactions[:0]
		for n, opt := range options {
			lines = append(lines, fmt.Sprintf("%s %s", pollNumberEmojis[n], opt))
			reactions = append(reactions, pollNumberEmojis[n])
		}
		embed.Description = strings.Join(lines, "\n")
	}

	d.respondEmbed(s, i, embed, false)

	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		d.logFromContext(ctx).Warn("could not fetch poll message", tint.Err(err))
		return
	}
	for _, emoji := range reactions {
		if err := s.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
			d.logFromContext(ctx).Warn(
				"could not add poll reaction",
				"emoji", emoji,
				tint.Err(err),
			)
			return
		}
	}
}

func (d *Discord) handleFlip(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	result := "Heads"
	if rand.Intn(2) == 1 {
		result = "Tails"
	}
	d.respond(s, i, fmt.Sprintf("🪙 The coin landed on **%s**!", result), false)
}

func (d *Discord) handleRoll(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	sides := int64(6)
	if opt, ok := optionMap(i)["sides"]; ok {
		sides = opt.IntValue()
	}
	if sides < 2 {
		d.respond(s, i, "❌ A die needs at least 2 sides.", true)
		return
	}
	d.respond(
		s, i,
		fmt.Sprintf("🎲 You rolled a **%d** (d%d).", 1+rand.Int63n(sides), sides),
		false,
	)
}

func (d *Discord) handleChoose(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	options := parsePollOptions(optionMap(i)["options"].StringValue())
	if len(options) < 2 {
		d.respond(s, i, "❌ Give me at least two comma-separated options.", true)
		return
	}
	d.respond(
		s, i,
		fmt.Sprintf("🤔 I choose... **%s**!", options[rand.Intn(len(options))]),
		false,
	)
}

var eightBallAnswers = []string{
	"It is certain.",
	"Without a doubt.",
	"Yes, definitely.",
	"Most likely.",
	"Outlook good.",
	"Signs point to yes.",
	"Reply hazy, try again.",
	"Ask again later.",
	"Better not tell you now.",
	"Cannot predict now.",
	"Don't count on it.",
	"My reply is no.",
	"My sources say no.",
	"Outlook not so good.",
	"Very doubtful.",
}

func (d *Discord) handleEightBall(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	question := optionMap(i)["question"].StringValue()
	d.respond(
		s, i, fmt.Sprintf(
			"🎱 **%s**\n%s",
			truncate(question, 200),
			eightBallAnswers[rand.Intn(len(eightBallAnswers))],
		), false,
	)
}
