package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pfal-lab/pfal-controller/internal/services/simulator"
	"github.com/pfal-lab/pfal-controller/pkg/broker"
)

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mqCfg := &broker.Config{
		Host:     env("MQTT_HOST", "localhost"),
		Port:     envInt("MQTT_PORT", 1883),
		User:     env("MQTT_USER", ""),
		Password: env("MQTT_PASSWORD", ""),
		ClientID: env("MQTT_CLIENT_ID", "pfal-simulator"),
	}
	mqClient, err := broker.NewConn(ctx, mqCfg)
	if err != nil {
		log.Fatalf("simulator: mqtt connect failed: %v", err)
	}

	topics := simulator.Topics{
		PH:     env("MQTT_TOPIC_PH", "pfal/sensors/ph"),
		EC:     env("MQTT_TOPIC_EC", "pfal/sensors/ec"),
		BME280: env("MQTT_TOPIC_BME280", "pfal/sensors/bme280"),
	}
	interval := time.Duration(envInt("PUBLISH_INTERVAL_SEC", 10)) * time.Second
	sensorID := env("SENSOR_ID", "sim-1")

	sim := simulator.New(broker.NewPublisher(mqClient), topics, sensorID, interval, time.Now().UnixNano())
	log.Printf("simulator: publishing as %s every %s", sensorID, interval)
	sim.Start(ctx)
}
