//go:build ignore

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/route-dashboard/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	group := flag.String("group", "location-changelog-workers", "Consumer group of the change log worker")
	locationID := flag.Int64("location", 1, "Location ID")
	routeID := flag.Int64("route", 1, "Route ID")
	code := flag.Int("code", 100, "Location code")
	changeType := flag.String("type", string(domain.ChangeUpdate), "Change type: create, update, delete")
	flag.Parse()

	if !domain.ChangeType(*changeType).Valid() {
		log.Fatalf("Unknown change type %q", *changeType)
	}

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := domain.LocationChangeEvent{
		LocationID: *locationID,
		RouteID:    *routeID,
		Type:       domain.ChangeType(*changeType),
		Code:       *code,
		OccurredAt: time.Now().UTC(),
	}

	data, err := sonic.MarshalString(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Публикация в стрим
	messageID, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamLocationChanges,
		Values: map[string]interface{}{
			"data": data,
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamLocationChanges)
	fmt.Printf("   Message ID: %s\n", messageID)
	fmt.Printf("   Location: %d (route %d, code %d, %s)\n", event.LocationID, event.RouteID, event.Code, event.Type)

	// Ожидание подтверждения воркером
	fmt.Printf("\nWaiting for group %s to acknowledge the message...\n", *group)

	timeout := time.After(30 * time.Second)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("Timeout waiting for the worker")
			return
		case <-ticker.C:
			groups, err := client.XInfoGroups(ctx, domain.StreamLocationChanges).Result()
			if err != nil {
				continue
			}
			for _, g := range groups {
				if g.Name != *group {
					continue
				}
				if g.LastDeliveredID >= messageID && g.Pending == 0 {
					fmt.Println("Message recorded in the change log")
					return
				}
			}
		}
	}
}
