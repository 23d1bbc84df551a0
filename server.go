package main

// server module
//
// Copyright (c) 2023 - Valentin Kuznetsov <vkuznet@gmail.com>
//

import (
	"crypto/tls"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/uptrace/bunrouter"
)

// content is our static web server content.
//
//go:embed static
var StaticFs embed.FS

// bunrouter implementation of the compatible (with net/http) router handlers
func bunRouter(p *Predictor) *bunrouter.CompatRouter {
	router := bunrouter.New(
		bunrouter.WithNotFoundHandler(bunrouter.HTTPHandlerFunc(NotFoundHandler)),
		bunrouter.WithMethodNotAllowedHandler(bunrouter.HTTPHandlerFunc(MethodNotAllowedHandler)),
		bunrouter.Use(bunrouterLoggingMiddleware),
		bunrouter.Use(bunrouterHeadersMiddleware),
		bunrouter.Use(bunrouterLimitMiddleware),
	).Compat()
	base := Config.Base

	// web APIs
	router.GET(base+"/", HomeHandler)
	router.GET(base+"/about", AboutHandler)
	router.GET(base+"/insights", InsightsHandler)
	router.GET(base+"/tips", TipsHandler)
	predict := PredictHandler(p)
	router.GET(base+"/predict", predict)
	router.POST(base+"/predict", predict)

	// static handlers
	for _, dir := range []string{"css", "images"} {
		filesFS, err := fs.Sub(StaticFs, "static/"+dir)
		if err != nil {
			panic(err)
		}
		m := fmt.Sprintf("%s/%s", base, dir)
		fileServer := http.FileServer(http.FS(filesFS))
		hdlr := http.StripPrefix(m, fileServer)
		router.Router.GET(m+"/*path", bunrouter.HTTPHandler(hdlr))
	}
	return router
}

// Server implements web server
func Server() {
	// initialize server middleware
	if err := initLimiter(Config.Rate); err != nil {
		log.Fatal(err)
	}

	// classifier is loaded once and shared read-only by all requests
	predictor := &Predictor{Classifier: initClassifier()}

	// setup server router
	router := bunRouter(predictor)

	// start HTTPs server
	if len(Config.DomainNames) > 0 {
		server := LetsEncryptServer(Config.DomainNames...)
		server.Handler = router
		log.Println("Start HTTPs server with LetsEncrypt", Config.DomainNames)
		log.Fatal(server.ListenAndServeTLS("", ""))
	} else if Config.ServerCrt != "" && Config.ServerKey != "" {
		tlsConfig := &tls.Config{
			RootCAs: RootCAs(),
		}
		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", Config.Port),
			TLSConfig:         tlsConfig,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		log.Printf("Start HTTPs server with %s and %s on :%d", Config.ServerCrt, Config.ServerKey, Config.Port)
		log.Fatal(server.ListenAndServeTLS(Config.ServerCrt, Config.ServerKey))
	} else {
		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", Config.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		log.Printf("Start HTTP server on :%d", Config.Port)
		log.Fatal(server.ListenAndServe())
	}
}
