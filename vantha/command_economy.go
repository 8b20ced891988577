package vantha

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// Shop categories and the perk IDs the economy commands check for.
const (
	shopCategoryColors  = "colors"
	shopCategorySpecial = "special"
	shopCategoryPerks   = "perks"
	shopCategoryItems   = "items"

	perkDailyBoost = "daily_boost"
	perkWorkBoost  = "work_boost"
	perkGambleLuck = "gamble_luck"
)

// ShopItem is one purchasable catalog entry. The catalog is static; the
// store only sees the resulting InventoryItem.
type ShopItem struct {
	Name         string
	Price        int64
	Type         string
	Category     string
	Color        int
	DurationDays int
	Description  string
}

func shopCatalog() map[string]ShopItem {
	return map[string]ShopItem{
		"red_role":    {Name: "🔴 Red Color Role", Price: 5000, Type: ItemTypeRole, Category: shopCategoryColors, Color: 0xFF0000},
		"blue_role":   {Name: "🔵 Blue Color Role", Price: 5000, Type: ItemTypeRole, Category: shopCategoryColors, Color: 0x0000FF},
		"green_role":  {Name: "🟢 Green Color Role", Price: 5000, Type: ItemTypeRole, Category: shopCategoryColors, Color: 0x00FF00},
		"purple_role": {Name: "🟣 Purple Color Role", Price: 5000, Type: ItemTypeRole, Category: shopCategoryColors, Color: 0x800080},
		"orange_role": {Name: "🟠 Orange Color Role", Price: 5000, Type: ItemTypeRole, Category: shopCategoryColors, Color: 0xFFA500},
		"yellow_role": {Name: "🟡 Yellow Color Role", Price: 5000, Type: ItemTypeRole, Category: shopCategoryColors, Color: 0xFFFF00},

		"vip_role":       {Name: "⭐ VIP Member", Price: 15000, Type: ItemTypeRole, Category: shopCategorySpecial, Color: 0xFFD700},
		"supporter_role": {Name: "💎 Server Supporter", Price: 25000, Type: ItemTypeRole, Category: shopCategorySpecial, Color: 0x00FFFF},
		"legend_role":    {Name: "👑 Legend", Price: 50000, Type: ItemTypeRole, Category: shopCategorySpecial, Color: 0xFF1493},

		perkDailyBoost: {Name: "📈 Daily Boost (7 days)", Price: 10000, Type: ItemTypePerk, Category: shopCategoryPerks, DurationDays: 7},
		perkWorkBoost:  {Name: "⚡ Work Boost (7 days)", Price: 8000, Type: ItemTypePerk, Category: shopCategoryPerks, DurationDays: 7},
		perkGambleLuck: {Name: "🍀 Gamble Luck (3 days)", Price: 12000, Type: ItemTypePerk, Category: shopCategoryPerks, DurationDays: 3},

		"trophy":  {Name: "🏆 Trophy", Price: 2000, Type: ItemTypeItem, Category: shopCategoryItems, Description: "A shiny trophy for your collection"},
		"medal":   {Name: "🥇 Gold Medal", Price: 3500, Type: ItemTypeItem, Category: shopCategoryItems, Description: "A prestigious gold medal"},
		"crown":   {Name: "👑 Crown", Price: 7500, Type: ItemTypeItem, Category: shopCategoryItems, Description: "A royal crown fit for a king"},
		"gem":     {Name: "💎 Diamond", Price: 15000, Type: ItemTypeItem, Category: shopCategoryItems, Description: "A rare and valuable diamond"},
		"crystal": {Name: "🔮 Magic Crystal", Price: 20000, Type: ItemTypeItem, Category: shopCategoryItems, Description: "A mysterious crystal with unknown powers"},
	}
}

var workJobs = []string{
	"delivered packages",
	"cleaned offices",
	"walked dogs",
	"mowed lawns",
	"tutored students",
	"fixed computers",
	"painted houses",
	"washed cars",
	"served tables",
	"stocked shelves",
}

func (d *Discord) handleBalance(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	targetID := interactionUserID(i)
	targetName := "Your"
	opts := optionMap(i)
	if opt, ok := opts["user"]; ok {
		user := opt.UserValue(s)
		targetID = user.ID
		targetName = user.Username + "'s"
	}

	acct := d.v.store.Account(targetID)
	d.respondEmbed(
		s, i, &discordgo.MessageEmbed{
			Title: fmt.Sprintf("💰 %s Balance", targetName),
			Description: fmt.Sprintf(
				"**Current Balance:** $%d\n**Total Earned:** $%d\n**Total Spent:** $%d",
				acct.Balance, acct.TotalEarned, acct.TotalSpent,
			),
		}, false,
	)
}

func (d *Discord) handleDaily(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	userID := interactionUserID(i)
	store := d.v.store

	if !store.ClaimDaily(userID) {
		remaining := store.NextDaily(userID)
		d.respond(
			s, i, fmt.Sprintf(
				"⏰ You can claim your next daily reward in %s.",
				formatSeconds(int64(remaining.Seconds())),
			), true,
		)
		return
	}

	base := d.v.config.Economy.DailyAmount
	total := base
	var bonus int64
	if store.PerkActive(userID, perkDailyBoost) {
		bonus = base / 2
		store.Credit(userID, bonus)
		total += bonus
	}

	msg := fmt.Sprintf("🎁 You received **$%d**!", total)
	if bonus > 0 {
		msg += fmt.Sprintf(" (📈 Daily Boost: +$%d)", bonus)
	}
	d.respond(s, i, msg, false)
}

func (d *Discord) handleWork(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	userID := interactionUserID(i)
	store := d.v.store
	economy := d.v.config.Economy

	base := economy.WorkMin + rand.Int63n(economy.WorkMax-economy.WorkMin+1)
	var bonus int64
	if store.PerkActive(userID, perkWorkBoost) {
		bonus = base / 3
	}
	total := base + bonus

	if !store.ClaimWork(userID, total) {
		remaining := store.NextWork(userID)
		d.respond(
			s, i, fmt.Sprintf(
				"⏰ You're still tired from your last job. Rest for %s.",
				formatSeconds(int64(remaining.Seconds())),
			), true,
		)
		return
	}

	job := workJobs[rand.Intn(len(workJobs))]
	msg := fmt.Sprintf("💼 You %s and earned **$%d**!", job, total)
	if bonus > 0 {
		msg += fmt.Sprintf(" (⚡ Work Boost: +$%d)", bonus)
	}
	d.respond(s, i, msg, false)
}

func (d *Discord) handlePay(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	payer := interactionUserID(i)
	recipient := opts["user"].UserValue(s)
	amount := opts["amount"].IntValue()

	switch {
	case recipient.Bot:
		d.respond(s, i, "❌ You can't pay bots.", true)
		return
	case recipient.ID == payer:
		d.respond(s, i, "❌ You can't pay yourself.", true)
		return
	case amount <= 0:
		d.respond(s, i, "❌ Amount must be positive.", true)
		return
	}

	if !d.v.store.Debit(payer, amount) {
		d.respond(s, i, "❌ You don't have enough money.", true)
		return
	}
	d.v.store.Credit(recipient.ID, amount)

	d.respond(
		s, i, fmt.Sprintf("💸 You paid **$%d** to <@%s>!", amount, recipient.ID),
		false,
	)
}

func (d *Discord) handleGamble(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	userID := interactionUserID(i)
	amount := opts["amount"].IntValue()
	store := d.v.store

	if amount <= 0 {
		d.respond(s, i, "❌ Amount must be positive.", true)
		return
	}
	if max := d.v.config.Economy.GambleMaxBet; max > 0 && amount > max {
		d.respond(s, i, fmt.Sprintf("❌ Maximum bet is **$%d**.", max), true)
		return
	}

	if !store.Debit(userID, amount) {
		d.respond(s, i, "❌ You don't have enough money.", true)
		return
	}

	winChance := 0.5
	luckActive := store.PerkActive(userID, perkGambleLuck)
	if luckActive {
		winChance = 0.65
	}

	if rand.Float64() < winChance {
		winnings := amount * 2
		store.Credit(userID, winnings)
		msg := fmt.Sprintf(
			"🎉 You bet **$%d** and won **$%d**! Net profit: **$%d**",
			amount, winnings, amount,
		)
		if luckActive {
			msg += "\n🍀 Gamble Luck helped you win!"
		}
		d.respond(s, i, msg, false)
		return
	}

	msg := fmt.Sprintf("😢 You bet **$%d** and lost it all!", amount)
	if luckActive {
		msg += " Even with Gamble Luck, fortune wasn't on your side this time."
	}
	d.respond(s, i, msg, false)
}

func (d *Discord) handleShop(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	acct := d.v.store.Account(interactionUserID(i))

	category := ""
	if opt, ok := opts["category"]; ok {
		category = opt.StringValue()
	}

	if category == "" {
		d.respondEmbed(
			s, i, &discordgo.MessageEmbed{
				Title: "🛒 Economy Shop",
				Description: "Browse a category with `/shop category`:\n" +
					"🎨 **Color Roles** — custom colored roles\n" +
					"⭐ **Special Roles** — exclusive premium roles\n" +
					"🚀 **Perks** — temporary boosts\n" +
					"🎁 **Items** — collectibles\n\n" +
					"Buy with `/buy item`.",
				Footer: &discordgo.MessageEmbedFooter{
					Text: fmt.Sprintf("Your balance: $%d", acct.Balance),
				},
			}, false,
		)
		return
	}

	titles := map[string]string{
		shopCategoryColors:  "🎨 Color Roles",
		shopCategorySpecial: "⭐ Special Roles",
		shopCategoryPerks:   "🚀 Perks",
		shopCategoryItems:   "🎁 Items",
	}

	type entry struct {
		id   string
		item ShopItem
	}
	var entries []entry
	for id, item := range shopCatalog() {
		if item.Category == category {
			entries = append(entries, entry{id: id, item: item})
		}
	}
	sort.Slice(
		entries, func(a, b int) bool {
			if entries[a].item.Price != entries[b].item.Price {
				return entries[a].item.Price < entries[b].item.Price
			}
			return entries[a].id < entries[b].id
		},
	)

	var lines []string
	for _, e := range entries {
		owned := ""
		if _, ok := acct.Inventory[e.id]; ok {
			owned = " ✅"
		}
		detail := ""
		switch e.item.Type {
		case ItemTypePerk:
			detail = fmt.Sprintf(" — %d days", e.item.DurationDays)
		case ItemTypeItem:
			detail = " — " + e.item.Description
		}
		lines = append(
			lines,
			fmt.Sprintf("**%s**%s — $%d — `%s`%s", e.item.Name, owned, e.item.Price, e.id, detail),
		)
	}

	d.respondEmbed(
		s, i, &discordgo.MessageEmbed{
			Title:       titles[category],
			Description: strings.Join(lines, "\n"),
			Footer: &discordgo.MessageEmbedFooter{
				Text: fmt.Sprintf("Your balance: $%d | /buy <item_id> to purchase", acct.Balance),
			},
		}, false,
	)
}

func (d *Discord) handleBuy(
	ctx context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	userID := interactionUserID(i)
	itemID := strings.ToLower(strings.TrimSpace(opts["item"].StringValue()))
	store := d.v.store

	item, ok := shopCatalog()[itemID]
	if !ok {
		d.respond(s, i, "❌ No such item. See `/shop` for the catalog.", true)
		return
	}
	if _, owned := store.Account(userID).Inventory[itemID]; owned {
		d.respond(s, i, "❌ You already own this item.", true)
		return
	}

	if !store.Debit(userID, item.Price) {
		d.respond(
			s, i, fmt.Sprintf("❌ You need **$%d** to buy %s.", item.Price, item.Name),
			true,
		)
		return
	}

	store.AddToInventory(
		userID, itemID, InventoryItem{
			Name:         item.Name,
			Type:         item.Type,
			Price:        item.Price,
			DurationDays: item.DurationDays,
			Description:  item.Description,
			Color:        item.Color,
		},
	)

	msg := fmt.Sprintf("✅ You bought **%s** for **$%d**!", item.Name, item.Price)
	if item.Type == ItemTypePerk {
		expiry := time.Now().Add(time.Duration(item.DurationDays) * 24 * time.Hour)
		store.ActivatePerk(userID, itemID, expiry)
		msg += fmt.Sprintf(" Active for %d days.", item.DurationDays)
	}
	if item.Type == ItemTypeRole && i.GuildID != "" {
		d.grantShopRole(ctx, s, i.GuildID, userID, itemID, item)
	}
	d.respond(s, i, msg, false)
}

// grantShopRole creates the colored role on first purchase and assigns
// it to the buyer. Failures are logged, not refunded: the inventory
// entry stands and a moderator can assign the role manually.
func (d *Discord) grantShopRole(
	ctx context.Context,
	s *discordgo.Session,
	guildID, userID, itemID string,
	item ShopItem,
) {
	log, ok := ContextLogger(ctx)
	if !ok {
		log = d.logger
	}

	roles, err := s.GuildRoles(guildID)
	if err != nil {
		log.Warn("could not list guild roles", tint.Err(err))
		return
	}
	var roleID string
	for _, role := range roles {
		if role.Name == item.Name {
			roleID = role.ID
			break
		}
	}
	if roleID == "" {
		role, roleErr := s.GuildRoleCreate(
			guildID, &discordgo.RoleParams{
				Name:  item.Name,
				Color: &item.Color,
			},
		)
		if roleErr != nil {
			log.Warn("could not create shop role", "item_id", itemID, tint.Err(roleErr))
			return
		}
		roleID = role.ID
	}

	if err := s.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
		log.Warn("could not assign shop role", "item_id", itemID, tint.Err(err))
	}
}

func (d *Discord) handleSell(
	ctx context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	opts := optionMap(i)
	userID := interactionUserID(i)
	itemID := strings.ToLower(strings.TrimSpace(opts["item"].StringValue()))
	store := d.v.store

	acct := store.Account(userID)
	item, owned := acct.Inventory[itemID]
	if !owned {
		d.respond(s, i, "❌ You don't own that item. See `/inventory`.", true)
		return
	}

	// Items sell back at half price; anything too cheap to halve can't
	// be sold.
	sellPrice := item.Price / 2
	if sellPrice <= 0 {
		d.respond(s, i, "❌ That item can't be sold.", true)
		return
	}

	if !store.RemoveFromInventory(userID, itemID) {
		d.respond(s, i, "❌ You don't own that item. See `/inventory`.", true)
		return
	}
	store.Credit(userID, sellPrice)

	if item.Type == ItemTypeRole && i.GuildID != "" {
		d.revokeShopRole(ctx, s, i.GuildID, userID, item.Name)
	}

	d.respond(
		s, i,
		fmt.Sprintf("💵 You sold **%s** for **$%d** (half its purchase price).", item.Name, sellPrice),
		false,
	)
}

// revokeShopRole removes a sold role item's guild role from the user.
// Failures are logged only; the sale has already gone through.
func (d *Discord) revokeShopRole(
	ctx context.Context,
	s *discordgo.Session,
	guildID, userID, roleName string,
) {
	log, ok := ContextLogger(ctx)
	if !ok {
		log = d.logger
	}

	roles, err := s.GuildRoles(guildID)
	if err != nil {
		log.Warn("could not list guild roles", tint.Err(err))
		return
	}
	for _, role := range roles {
		if role.Name != roleName {
			continue
		}
		if err := s.GuildMemberRoleRemove(guildID, userID, role.ID); err != nil {
			log.Warn("could not remove shop role", "role_id", role.ID, tint.Err(err))
		}
		return
	}
}

// handleEco is the admin economy command: adjust or wipe a user's
// record directly.
func (d *Discord) handleEco(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	sub := i.ApplicationCommandData().Options[0]
	opts := subOptionMap(sub)
	target := opts["user"].UserValue(s)
	store := d.v.store

	switch sub.Name {
	case "give":
		amount := opts["amount"].IntValue()
		if !store.Credit(target.ID, amount) {
			d.respond(s, i, "❌ Amount must be positive.", true)
			return
		}
		d.respond(
			s, i, fmt.Sprintf("✅ Gave **$%d** to <@%s>.", amount, target.ID),
			false,
		)
	case "take":
		amount := opts["amount"].IntValue()
		if amount <= 0 {
			d.respond(s, i, "❌ Amount must be positive.", true)
			return
		}
		if store.Debit(target.ID, amount) {
			d.respond(
				s, i, fmt.Sprintf("✅ Took **$%d** from <@%s>.", amount, target.ID),
				false,
			)
			return
		}
		// Not enough to cover the full amount: take everything they have.
		drained := store.DrainBalance(target.ID)
		d.respond(
			s, i, fmt.Sprintf(
				"✅ Took **$%d** from <@%s> (all they had).", drained, target.ID,
			), false,
		)
	case "set":
		amount := opts["amount"].IntValue()
		if !store.SetBalance(target.ID, amount) {
			d.respond(s, i, "❌ Balance can't be negative.", true)
			return
		}
		d.respond(
			s, i, fmt.Sprintf("✅ Set <@%s>'s balance to **$%d**.", target.ID, amount),
			false,
		)
	case "reset":
		if !store.ResetAccount(target.ID) {
			d.respond(s, i, "❌ That user has no economy record.", true)
			return
		}
		d.respond(
			s, i, fmt.Sprintf("🗑️ Reset <@%s>'s economy record.", target.ID),
			false,
		)
	}
}

func (d *Discord) handleInventory(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	userID := interactionUserID(i)
	acct := d.v.store.Account(userID)

	if len(acct.Inventory) == 0 {
		d.respond(s, i, "Your inventory is empty. See `/shop` to get started.", true)
		return
	}

	ids := make([]string, 0, len(acct.Inventory))
	for id := range acct.Inventory {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var lines []string
	now := time.Now().Unix()
	for _, id := range ids {
		item := acct.Inventory[id]
		line := fmt.Sprintf("**%s** (`%s`)", item.Name, id)
		if item.Type == ItemTypePerk {
			if perk, ok := acct.ActivePerks[id]; ok && now < perk.ExpiresAt {
				line += fmt.Sprintf(
					" — active, %s left",
					formatSeconds(perk.ExpiresAt-now),
				)
			} else {
				line += " — expired"
			}
		}
		lines = append(lines, line)
	}

	d.respondEmbed(
		s, i, &discordgo.MessageEmbed{
			Title:       "🎒 Inventory",
			Description: strings.Join(lines, "\n"),
		}, true,
	)
}

func (d *Discord) handleLeaderboard(
	_ context.Context,
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	const perPage = 10

	opts := optionMap(i)
	page := 1
	if opt, ok := opts["page"]; ok {
		page = int(opt.IntValue())
	}

	entries := d.v.store.Leaderboard()
	totalPages := (len(entries) + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(entries) {
		end = len(entries)
	}

	medals := map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}
	var lines []string
	for idx, e := range entries[start:end] {
		rank := start + idx + 1
		medal, ok := medals[rank]
		if !ok {
			medal = fmt.Sprintf("%d.", rank)
		}
		lines = append(lines, fmt.Sprintf("%s <@%s> — $%d", medal, e.UserID, e.Balance))
	}
	if len(lines) == 0 {
		lines = []string{"No users found."}
	}

	d.respondEmbed(
		s, i, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("💰 Money Leaderboard — Page %d/%d", page, totalPages),
			Description: strings.Join(lines, "\n"),
		}, false,
	)
}
