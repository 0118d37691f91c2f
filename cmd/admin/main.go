package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"skillswap/backend/internal/admin"
	"skillswap/backend/internal/chathub"
	"skillswap/backend/internal/config"
	"skillswap/backend/internal/deal"
	"skillswap/backend/internal/gamification"
	"skillswap/backend/internal/localization"
	"skillswap/backend/internal/logger"
	"skillswap/backend/internal/storage"
	"skillswap/backend/internal/telegram"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin [-admin <admin_user_id>] [-reason <text>] <command> [args]

Commands:
  promote <user_id>       grant the admin role
  ban <user_id>           deactivate a user (needs -admin)
  unban <user_id>         reactivate a user (needs -admin)
  delete-ad <ad_id>       remove an ad (needs -admin)
  cancel-deal <deal_id>   cancel a deal and notify the chat (needs -admin)
  announce <text>         send a Telegram message to every subscriber
  stats                   print platform totals as JSON
  seed-badges             create or update the badge catalogue
`

// cli bundles what the commands need.
type cli struct {
	admin   *admin.Service
	gam     *gamification.Service
	adminID string
	reason  string
}

func main() {
	adminID := flag.String("admin", "", "id of the admin performing the action")
	reason := flag.String("reason", "", "reason written to the admin log")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat, cfg.Debug)

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	store := storage.NewStorageService(db, rdb)

	// Події угод публікуються в Redis, тож підключені клієнти API їх отримають
	relay := chathub.NewRelay(chathub.NewRegistry())
	relay.SetPublisher(chathub.NewRedisFanout(rdb, "admin-cli-"+cfg.InstanceID))

	localizer, err := localization.NewLocalizer(cfg.LocalesDir)
	if err != nil {
		log.Fatalf("Failed to load locales: %v", err)
	}
	bot, err := telegram.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v", err)
	}
	var sender telegram.Sender
	if bot != nil {
		sender = bot
	}
	notifier := telegram.NewNotifier(sender, store, localizer, cfg.TelegramBotUsername)

	gam := gamification.NewService(store, notifier)
	deals := deal.NewService(store, relay, gam, notifier)

	c := &cli{
		admin:   admin.NewService(store, deals, notifier),
		gam:     gam,
		adminID: *adminID,
		reason:  *reason,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := c.run(ctx, args[0], args[1:]); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func (c *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "promote":
		userID, err := oneArg(command, args)
		if err != nil {
			return err
		}
		if err := c.admin.Promote(ctx, userID); err != nil {
			return err
		}
		fmt.Printf("User %s is now an admin.\n", userID)
	case "ban":
		userID, err := c.targetWithAdmin(command, args)
		if err != nil {
			return err
		}
		if err := c.admin.Ban(ctx, c.adminID, userID, c.reason); err != nil {
			return err
		}
		fmt.Printf("User %s has been banned.\n", userID)
	case "unban":
		userID, err := c.targetWithAdmin(command, args)
		if err != nil {
			return err
		}
		if err := c.admin.Unban(ctx, c.adminID, userID, c.reason); err != nil {
			return err
		}
		fmt.Printf("User %s has been unbanned.\n", userID)
	case "delete-ad":
		adID, err := c.targetWithAdmin(command, args)
		if err != nil {
			return err
		}
		if err := c.admin.DeleteAd(ctx, c.adminID, adID, c.reason); err != nil {
			return err
		}
		fmt.Printf("Ad %s has been deleted.\n", adID)
	case "cancel-deal":
		raw, err := c.targetWithAdmin(command, args)
		if err != nil {
			return err
		}
		dealID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid deal id %q", raw)
		}
		d, err := c.admin.CancelDeal(ctx, c.adminID, uint(dealID), c.reason)
		if err != nil {
			return err
		}
		fmt.Printf("Deal %d in chat %d is now %s.\n", d.ID, d.ChatID, d.Status)
	case "announce":
		if len(args) == 0 {
			return fmt.Errorf("usage: admin announce <text>")
		}
		sent, err := c.admin.Announce(ctx, c.adminID, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("Announcement delivered to %d subscribers.\n", sent)
	case "stats":
		stats, err := c.admin.Stats(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	case "seed-badges":
		if err := c.gam.SeedBadges(ctx); err != nil {
			return err
		}
		fmt.Println("Badges seeded.")
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
	return nil
}

func oneArg(command string, args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("usage: admin %s <id>", command)
	}
	return args[0], nil
}

// targetWithAdmin is oneArg for commands that write the admin log.
func (c *cli) targetWithAdmin(command string, args []string) (string, error) {
	if c.adminID == "" {
		return "", fmt.Errorf("%s requires -admin <admin_user_id>", command)
	}
	return oneArg(command, args)
}
