/*
Turnstilesrv starts a turnstile server and begins listening for new
connections.

Usage:

	turnstilesrv [flags]
	turnstilesrv [flags] -l [[ADDRESS]:PORT]

Once started, the turnstile server will listen for HTTP requests and respond
to them using REST protocol. By default, it will listen on localhost:8080.
This can be changed with the --listen/-l flag (or config via environment
var). The flag argument must be either a full address with port, such as
"192.168.0.2:6001", or just the port preceeded by a colon, such as ":6001".

If a JWT token secret is not given, one will be automatically generated and
seeded with the current system time. As a consequence, in this mode of
operation all tokens are rendered invalid as soon as the server shuts down.
This is suitable for testing, but must be given via either CLI flags or
environment variable if running in production.

The flags are:

	-v, --version
		Give the current version of the turnstile server and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment
		variable TURNSTILE_LISTEN_ADDRESS, and if that is not given, will
		default to localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are less
		than 32 bytes in the secret, it will be repeated until it is. The
		maximum size is 64 bytes. If not given, will default to the value of
		environment variable TURNSTILE_TOKEN_SECRET. If no secret is
		specified or an empty secret is given, a random secret will be
		automatically generated. Note that any tokens issued with a random
		secret will become invalid as soon as the server shuts down.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the
		following: inmem, sqlite. inmem has no further params. sqlite needs
		the path to the data directory, such as sqlite:path/to/db_dir. If not
		given, will default to the value of environment variable
		TURNSTILE_DATABASE. If no DB driver is specified or an empty one is
		given, an in-memory database is automatically selected.

	--library PATH
		Load the TOML theorem library or manifest at PATH at startup. If not
		given, will default to the value of environment variable
		TURNSTILE_LIBRARY. If empty, no bundled theorems are available and
		the "theorem" proof rule can only cite theorems created at runtime.
*/
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/dekarrin/turnstile/internal/version"
	"github.com/dekarrin/turnstile/server"
	"github.com/spf13/pflag"
)

const (
	EnvListen  = "TURNSTILE_LISTEN_ADDRESS"
	EnvSecret  = "TURNSTILE_TOKEN_SECRET"
	EnvDB      = "TURNSTILE_DATABASE"
	EnvLibrary = "TURNSTILE_LIBRARY"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of turnstile server and then exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
	flagLibrary = pflag.String("library", "", "Load the given theorem library at startup.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (turnstile engine v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	args := pflag.Args()
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	addr, port, err := resolveListenAddr()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		os.Exit(1)
	}

	db, err := resolveDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		os.Exit(1)
	}

	secret := resolveSecret()

	libPath := *flagLibrary
	if !pflag.Lookup("library").Changed {
		libPath = os.Getenv(EnvLibrary)
	}

	srv, err := server.New(server.Config{
		TokenSecret: secret,
		DB:          db,
		LibraryPath: libPath,
	})
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err.Error())
	}
	log.Printf("DEBUG Server initialized")

	err = srv.EnsureAdmin(context.Background(), "admin", "password", "bogus@example.com")
	if err != nil {
		log.Printf("ERROR could not create initial admin user: %v", err)
		os.Exit(2)
	}

	listenAddr := fmt.Sprintf("%s:%d", addr, port)
	log.Printf("INFO  Starting turnstile server %s on %s...", version.ServerCurrent, listenAddr)
	if err := http.ListenAndServe(listenAddr, srv.Handler); err != nil {
		log.Fatalf("FATAL server stopped: %s", err.Error())
	}
}

func resolveListenAddr() (addr string, port int, err error) {
	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr == "" {
		return "localhost", 8080, nil
	}

	bindParts := strings.SplitN(listenAddr, ":", 2)
	if len(bindParts) != 2 {
		return "", 0, fmt.Errorf("listen address is not in ADDRESS:PORT or :PORT format")
	}

	p, err := strconv.Atoi(bindParts[1])
	if err != nil {
		return "", 0, fmt.Errorf("%q is not a valid port number", bindParts[1])
	}

	return bindParts[0], p, nil
}

func resolveDB() (server.Database, error) {
	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr == "" {
		return server.Database{Type: server.DatabaseInMemory}, nil
	}
	return server.ParseDBConnString(dbConnStr)
}

func resolveSecret() []byte {
	tokSecStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		tokSecStr = *flagSecret
	}

	if tokSecStr == "" {
		// use all 64 possible bytes if doing a generated secret
		tokSecret := make([]byte, server.MaxSecretSize)
		if _, err := rand.Read(tokSecret); err != nil {
			fmt.Fprintf(os.Stderr, "Could not generate token secret: %s\n", err.Error())
			os.Exit(1)
		}
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
		return tokSecret
	}

	tokSecret := []byte(tokSecStr)
	for len(tokSecret) < server.MinSecretSize {
		doubled := make([]byte, len(tokSecret)*2)
		copy(doubled, tokSecret)
		copy(doubled[len(tokSecret):], tokSecret)
		tokSecret = doubled
	}
	if len(tokSecret) > server.MaxSecretSize {
		fmt.Fprintf(os.Stderr, "Token secret is %d bytes, but it must be <= %d bytes\n", len(tokSecret), server.MaxSecretSize)
		os.Exit(1)
	}

	return tokSecret
}
