// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command songev verifies files against their .sgsig records. It is
// deliberately built without internal/keywrap or internal/keystore's
// write path: a verifier never needs a passphrase or the ability to
// write a key file, so it never links the code that could.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/CodeEspritLibre/songe/internal/config"
	"github.com/CodeEspritLibre/songe/internal/keystore"
	"github.com/CodeEspritLibre/songe/internal/signengine"
	"github.com/CodeEspritLibre/songe/internal/truststore"
)

var (
	argv0 string
	fs    *flag.FlagSet
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n\t%s [-debug] file\n", argv0)
	fs.PrintDefaults()
}

func main() {
	if err := run(os.Args); err != nil {
		if err == flag.ErrHelp {
			os.Exit(2)
		}
		log.Error(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	argv0 = args[0]
	fs = flag.NewFlagSet(argv0, flag.ContinueOnError)
	fs.Usage = usage
	debug := fs.Bool("debug", false, "Enable debug logging.")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *debug || os.Getenv("SONGE_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}

	if fs.NArg() != 1 {
		usage()
		return flag.ErrHelp
	}
	filePath := fs.Arg(0)

	cfg, err := config.Default()
	if err != nil {
		return err
	}
	ks := keystore.New(cfg)
	ts := truststore.New(cfg.ProjectDir)

	sigBytes, err := os.ReadFile(filePath + config.SigExt)
	if err != nil {
		return err
	}

	var trustVerifyKey *[32]byte
	if _, declaredVerifyKey, err := ks.Load(); err == nil {
		trustVerifyKey = &declaredVerifyKey
	}

	result, err := signengine.New().Verify(filePath, sigBytes, ts, trustVerifyKey)
	if err != nil {
		return err
	}

	switch result.Verdict {
	case signengine.GoodTrusted:
		log.Info("good signature, trusted")
	case signengine.GoodUntrusted:
		log.Warn("good signature, untrusted")
	}
	if result.TrustStoreCorrupted {
		log.Warn("trust store signature did not verify")
	}
	if result.TrustUnsigned {
		log.Warn("trust store signature is absent")
	}
	if result.IgnoredEmbeddedData {
		log.Warn("file present on disk; ignored embedded copy in signature record")
	}
	if result.RecoveredData != nil {
		os.Stdout.Write(result.RecoveredData)
	}
	return nil
}
