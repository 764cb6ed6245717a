// click-replay feeds a JSON-lines file of raw clicks into the clicks topic,
// for local development and load testing.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"link-analytics/internal/config"
	ikafka "link-analytics/internal/kafka"
	"link-analytics/internal/model"
)

func main() {
	path := flag.String("file", "", "path to a JSON-lines file of raw clicks")
	flag.Parse()
	if *path == "" {
		log.Fatal("usage: click-replay -file clicks.jsonl")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open %s: %v", *path, err)
	}
	defer file.Close()

	writer := ikafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicClicks)
	defer writer.Close()

	ctx := context.Background()
	scanner := bufio.NewScanner(file)
	produced := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw model.RawClick
		if err := json.Unmarshal(line, &raw); err != nil {
			log.Printf("skip malformed line: %v", err)
			continue
		}
		writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := writer.WriteMessages(writeCtx, kafkago.Message{
			Key:   []byte(raw.LinkID),
			Value: line,
		})
		cancel()
		if err != nil {
			log.Fatalf("produce click: %v", err)
		}
		produced++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read %s: %v", *path, err)
	}
	log.Printf("replayed %d clicks to %s", produced, cfg.KafkaTopicClicks)
}
