package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wayfare/admin"
	"wayfare/assistant"
	"wayfare/auth"
	"wayfare/citymeta"
	"wayfare/db"
	"wayfare/events"
	"wayfare/itinerary"
	"wayfare/jobs"
	"wayfare/mailer"
	"wayfare/ratelim"
	"wayfare/rdx"
	"wayfare/routes"
	"wayfare/tasks"
	"wayfare/traveler"
	"wayfare/unsplash"
	"wayfare/user"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// requestID tags every request so log lines of one request can be grouped.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s from %s - %v", w.Header().Get("X-Request-ID"), r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	if err := db.Connect(); err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	if err := rdx.Connect(); err != nil {
		log.Printf("redis connect: %v (cache disabled)", err)
	}

	queue := tasks.NewQueue(4, 64)
	mail := mailer.FromEnv()
	auth.Mail = mail
	gateway := assistant.New()

	requestStore := itinerary.NewMongoRequestStore()
	itineraryStore := itinerary.NewMongoStore()
	metaStore := itinerary.NewMongoMetaStore()
	travelerStore := traveler.NewStore()
	userStore := user.NewStore()
	eventStore := events.NewStore()

	resolver := citymeta.NewResolver(citymeta.NewMongoStore(), gateway, unsplash.NewClient())
	docsAdvisory := itinerary.NewDocsAdvisory(gateway, itineraryStore, travelerStore, userStore, mail)
	pipeline := itinerary.NewRequestPipeline(
		requestStore, itineraryStore, metaStore,
		admin.NewConfigStore(), gateway, queue, eventStore, resolver, docsAdvisory,
	)
	lifecycle := itinerary.NewLifecycle(itineraryStore, metaStore)
	notifier := itinerary.NewNotifier(itineraryStore, travelerStore, userStore, mail)
	newsletter := events.NewNewsletter(eventStore, travelerStore, userStore, mail)

	scheduler := jobs.New(notifier, newsletter)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("scheduler start: %v", err)
	}

	rateLimiter := ratelim.NewRateLimiter()

	router := httprouter.New()
	router.GET("/health", Index)
	routes.RoutesWrapper(router, routes.Deps{
		Itineraries: itinerary.NewHandlers(pipeline, lifecycle, requestStore),
		Cities:      citymeta.NewHandlers(resolver),
		RateLimiter: rateLimiter,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := requestID(loggingMiddleware(securityHeaders(corsHandler)))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	scheduler.Stop()
	queue.Stop()
	db.Disconnect(ctx)

	log.Println("Server stopped cleanly")
}
