package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/pfal-lab/pfal-controller/internal/model/entities"
	controller "github.com/pfal-lab/pfal-controller/internal/services/controller"
	"github.com/pfal-lab/pfal-controller/internal/services/persistence"
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

	// --- Crop profile (fatal on any violation: the controller must not run
	// against an incomplete or out-of-domain profile) ---
	profilePath := env("PROFILE_PATH", "config/profile.json")
	profile, err := entities.LoadProfile(profilePath)
	if err != nil {
		log.Fatalf("controller: %v", err)
	}
	log.Printf("controller: loaded profile %q (pH %.1f±%.1f, EC %.1f±%.1f, temp %.0f-%.0f, lights %02d-%02d)",
		profile.ProfileName, profile.PHTarget, profile.PHTolerance, profile.ECTarget, profile.ECTolerance,
		profile.TempMin, profile.TempMax, profile.LightsOnHour, profile.LightsOffHour)

	// --- MQTT ---
	mqCfg := &broker.Config{
		Host:     env("MQTT_HOST", "localhost"),
		Port:     envInt("MQTT_PORT", 1883),
		User:     env("MQTT_USER", ""),
		Password: env("MQTT_PASSWORD", ""),
		ClientID: env("MQTT_CLIENT_ID", "pfal-controller"),
	}
	mqClient, err := broker.NewConn(ctx, mqCfg)
	if err != nil {
		log.Fatalf("controller: mqtt connect failed: %v", err)
	}
	defer broker.CloseConn(mqClient)

	topics := controller.SensorTopics{
		PH:          env("MQTT_TOPIC_PH", "pfal/sensors/ph"),
		EC:          env("MQTT_TOPIC_EC", "pfal/sensors/ec"),
		Temperature: env("MQTT_TOPIC_TEMP", "pfal/sensors/temperature"),
		BME280:      env("MQTT_TOPIC_BME280", "pfal/sensors/bme280"),
	}
	consumer := broker.NewMultiConsumer(mqClient, topics.All(), nil)
	publisher := broker.NewCommandPublisher(mqClient, env("MQTT_ACTUATOR_PREFIX", "pfal/actuators"))

	// --- InfluxDB ---
	influxCfg := persistence.Config{
		URL:    env("INFLUX_URL", "http://localhost:8086"),
		Token:  os.Getenv("INFLUX_TOKEN"),
		Org:    env("INFLUX_ORG", "pfal"),
		Bucket: env("INFLUX_BUCKET", "pfal_sensors"),
	}
	influxClient := influxdb2.NewClient(influxCfg.URL, influxCfg.Token)
	defer influxClient.Close()

	recorder, err := persistence.NewRecorder(influxClient, influxCfg)
	if err != nil {
		log.Fatalf("controller: recorder init failed: %v", err)
	}

	// --- Driver ---
	tickInterval := time.Duration(envInt("TICK_INTERVAL_SEC", 60)) * time.Second
	ctrl, err := controller.NewController(consumer, publisher, recorder, profile, topics, tickInterval)
	if err != nil {
		log.Fatalf("controller: init failed: %v", err)
	}

	// --- HTTP ---
	history := persistence.NewHistoryHandler(influxClient, influxCfg.Org, influxCfg.Bucket)
	mux := controller.NewHTTPMux(ctrl, mqClient, recorder, history)
	srv := &http.Server{
		Addr:              ":" + env("HTTP_PORT", "8080"),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("controller: HTTP listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("controller: http server error: %v", err)
		}
	}()

	go ctrl.Start(ctx)
	log.Printf("controller: running (tick every %s)", tickInterval)

	<-ctx.Done()
	stop()

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	log.Println("controller: shutdown complete")
}
