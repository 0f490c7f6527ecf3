// Command hoardctl talks to a running hoarding server: it searches nearby
// listings through the client cache and adds listings as a signed-in user.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"hoarding-server/client"
	"hoarding-server/logger"
	"hoarding-server/models"
)

func main() {
	_ = godotenv.Load()

	global := flag.NewFlagSet("hoardctl", flag.ExitOnError)
	baseURL := global.String("base-url", envOr("HOARDCTL_BASE_URL", "http://localhost:5000/api"), "API base URL")
	email := global.String("email", os.Getenv("HOARDCTL_EMAIL"), "login email")
	password := global.String("password", os.Getenv("HOARDCTL_PASSWORD"), "login password")
	redisAddr := global.String("redis", os.Getenv("HOARDCTL_REDIS"), "share the nearby cache through this Redis address")
	timeout := global.Duration("timeout", client.DefaultTimeout, "request timeout (clamped to 5s-15s)")
	global.Usage = usage(global)
	global.Parse(os.Args[1:])

	logger.Init(false)
	defer logger.Sync()
	log := logger.Named("hoardctl")

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	var cache client.Cache = client.NewMemoryCache()
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warnw("Redis unavailable, using in-process cache", "addr", *redisAddr, "error", err)
		} else {
			cache = client.NewRedisCache(rdb, 24*time.Hour)
		}
	}

	c := client.New(client.NewAPI(*baseURL, *timeout), cache, log)
	session := client.NewSession()
	ctx := context.Background()

	if *email != "" {
		if _, err := c.Login(ctx, session, *email, *password); err != nil {
			log.Fatalf("login failed: %v", err)
		}
	}

	var err error
	switch args[0] {
	case "nearby":
		err = runNearby(ctx, c, args[1:])
	case "all":
		var listings []models.Hoarding
		if listings, err = c.All(ctx); err == nil {
			printJSON(listings)
		}
	case "add":
		err = runAdd(ctx, c, session, args[1:])
	default:
		global.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", args[0], err)
	}
}

func runNearby(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("nearby", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	radius := fs.Float64("radius", client.DefaultRadius, "radius in meters")
	markers := fs.Bool("markers", false, "print map markers instead of listings")
	fs.Parse(args)

	res, err := c.Nearby(ctx, *lat, *lng, *radius)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%d listings from %s (fetched %s)\n", len(res.Listings), res.Source, res.FetchedAt.Format(time.RFC3339))
	if *markers {
		printJSON(client.BuildMarkers(res.Listings))
		return nil
	}
	printJSON(res.Listings)
	return nil
}

func runAdd(ctx context.Context, c *client.Client, session *client.Session, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "listing title")
	description := fs.String("description", "", "listing description")
	size := fs.String("size", "", "hoarding size, e.g. 20x10")
	price := fs.Float64("price", 0, "monthly price")
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	address := fs.String("address", "", "street address")
	fs.Parse(args)

	h, err := c.AddListing(ctx, session, models.HoardingDraft{
		Title:       *title,
		Description: *description,
		Size:        *size,
		Price:       *price,
		Address:     *address,
		Location:    &models.DraftLocation{Type: "Point", Coordinates: []any{*lng, *lat}},
	})
	if err != nil {
		return err
	}
	printJSON(h)
	return nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintln(os.Stderr, "usage: hoardctl [flags] nearby|all|add [command flags]")
		fs.PrintDefaults()
	}
}
