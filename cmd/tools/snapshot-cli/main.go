package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/annel0/voxel-battle/internal/storage"
	"github.com/annel0/voxel-battle/internal/vec"
	"github.com/google/uuid"
)

func main() {
	var (
		dbPath  = flag.String("db", "data", "Каталог хранилища (тот же, что storage.path)")
		command = flag.String("cmd", "list", "Command: list, show")
		bodyID  = flag.String("id", "", "ID тела для show")
	)
	flag.Parse()

	store, err := storage.NewBodyStore(*dbPath)
	if err != nil {
		log.Fatalf("❌ Failed to open store: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch *command {
	case "list":
		if err := listBodies(ctx, store); err != nil {
			log.Fatalf("❌ List failed: %v", err)
		}

	case "show":
		id, err := uuid.Parse(*bodyID)
		if err != nil {
			log.Fatalf("❌ Invalid -id: %v", err)
		}
		if err := showBody(ctx, store, id); err != nil {
			log.Fatalf("❌ Show failed: %v", err)
		}

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: list, show")
		os.Exit(1)
	}
}

// listBodies выводит сохранённые тела с числом вокселей и позицией
func listBodies(ctx context.Context, store *storage.BodyStore) error {
	meta, _, err := store.LoadWorld(ctx)
	if err != nil {
		return err
	}
	if meta.Tick > 0 {
		fmt.Printf("🌌 World saved at tick %d (%s)\n", meta.Tick, meta.SavedAt.Format(time.RFC3339))
	}

	ids, err := store.ListBodies(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("📦 Bodies: %d\n", len(ids))
	for _, id := range ids {
		snap, err := store.LoadSnapshot(ctx, id)
		if err != nil {
			return err
		}
		body, err := snap.Body()
		if err != nil {
			return fmt.Errorf("тело %s: %w", id, err)
		}
		pos := vec.Translation(snap.Repere)
		com := body.CenterOfMass()
		fmt.Printf("  %s  voxels=%-5d pos=(%.2f, %.2f, %.2f) com=(%.2f, %.2f, %.2f) vel=(%.2f, %.2f, %.2f)\n",
			id, len(snap.Voxels), pos.X(), pos.Y(), pos.Z(), com.X(), com.Y(), com.Z(),
			snap.Velocity.X(), snap.Velocity.Y(), snap.Velocity.Z())
	}
	return nil
}

// showBody печатает снимок тела в JSON
func showBody(ctx context.Context, store *storage.BodyStore, id uuid.UUID) error {
	snap, err := store.LoadSnapshot(ctx, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
