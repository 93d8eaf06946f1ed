// Copyright (c) 2026 The songe authors
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command songe signs and verifies files, and manages the per-project
// key and trust stores they rely on.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/CodeEspritLibre/songe/internal/facade"
	"github.com/CodeEspritLibre/songe/internal/passphrase"
	"github.com/CodeEspritLibre/songe/internal/signengine"
)

var (
	argv0 string
	fs    *flag.FlagSet
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "\t%s -generate\n", argv0)
	fmt.Fprintf(os.Stderr, "\t%s -import key\n", argv0)
	fmt.Fprintf(os.Stderr, "\t%s -change-passphrase\n", argv0)
	fmt.Fprintf(os.Stderr, "\t%s -show-signing-key\n", argv0)
	fmt.Fprintf(os.Stderr, "\t%s -show-verify-key\n", argv0)
	fmt.Fprintf(os.Stderr, "\t%s -sign [-c comment] [-e] file\n", argv0)
	fmt.Fprintf(os.Stderr, "\t%s -verify file\n", argv0)
	fmt.Fprintf(os.Stderr, "\t%s -trust-list [substring]\n", argv0)
	fmt.Fprintf(os.Stderr, "\t%s -trust-add key\n", argv0)
	fmt.Fprintf(os.Stderr, "\t%s -trust-remove key-or-index\n", argv0)
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
	const (
		none = iota
		generate
		importKey
		changePassphrase
		showSigningKey
		showVerifyKey
		sign
		verify
		trustList
		trustAdd
		trustRemove
	)
	verb := none

	argv0 = args[0]
	fs = flag.NewFlagSet(argv0, flag.ContinueOnError)
	fs.Usage = usage

	generateFlag := fs.Bool("generate", false, "Generate a new key pair for this project.")
	importFlag := fs.Bool("import", false, "Import a previously exported signing key (paste as the sole argument).")
	changePassphraseFlag := fs.Bool("change-passphrase", false, "Re-wrap the signing key under a new passphrase.")
	showSigningKeyFlag := fs.Bool("show-signing-key", false, "Print the project's signing key.")
	showVerifyKeyFlag := fs.Bool("show-verify-key", false, "Print the project's verify key.")
	signFlag := fs.Bool("sign", false, "Sign the given file, writing file.sgsig.")
	verifyFlag := fs.Bool("verify", false, "Verify the given file against its file.sgsig.")
	trustListFlag := fs.Bool("trust-list", false, "List trusted verify keys, optionally filtered by a substring argument.")
	trustAddFlag := fs.Bool("trust-add", false, "Add a verify key to the trust list (argument).")
	trustRemoveFlag := fs.Bool("trust-remove", false, "Remove a trust-list entry by key or 1-based index (argument).")

	comment := fs.String("c", "", "Comment to embed in a signature record.")
	embed := fs.Bool("e", false, "Embed the file's bytes in the signature record.")
	debug := fs.Bool("debug", false, "Enable debug logging.")

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *debug || os.Getenv("SONGE_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}

	setVerb := func(v int) (int, error) {
		if verb != none {
			usage()
			return 0, flag.ErrHelp
		}
		return v, nil
	}
	var err error
	switch {
	case *generateFlag:
		verb, err = setVerb(generate)
	case *importFlag:
		verb, err = setVerb(importKey)
	case *changePassphraseFlag:
		verb, err = setVerb(changePassphrase)
	case *showSigningKeyFlag:
		verb, err = setVerb(showSigningKey)
	case *showVerifyKeyFlag:
		verb, err = setVerb(showVerifyKey)
	case *signFlag:
		verb, err = setVerb(sign)
	case *verifyFlag:
		verb, err = setVerb(verify)
	case *trustListFlag:
		verb, err = setVerb(trustList)
	case *trustAddFlag:
		verb, err = setVerb(trustAdd)
	case *trustRemoveFlag:
		verb, err = setVerb(trustRemove)
	}
	if err != nil {
		return err
	}
	if verb == none {
		usage()
		return flag.ErrHelp
	}

	cfg, err := facade.DefaultConfig()
	if err != nil {
		return err
	}
	f := facade.New(cfg)
	fd := int(os.Stdin.Fd())

	switch verb {
	case generate:
		vk, err := f.Generate(passphrase.Terminal{Fd: fd, Confirm: true})
		if err != nil {
			return err
		}
		fmt.Println(vk)
	case importKey:
		if fs.NArg() != 1 {
			usage()
			return flag.ErrHelp
		}
		vk, err := f.Import(fs.Arg(0), passphrase.Terminal{Fd: fd, Confirm: true})
		if err != nil {
			return err
		}
		fmt.Println(vk)
	case changePassphrase:
		old := passphrase.Terminal{Fd: fd}
		newer := passphrase.Terminal{Fd: fd, Confirm: true}
		if err := f.ChangePassphrase(old, newer); err != nil {
			return err
		}
	case showSigningKey:
		sk, err := f.ShowSigningKey(passphrase.Terminal{Fd: fd})
		if err != nil {
			return err
		}
		fmt.Println(sk)
	case showVerifyKey:
		vk, err := f.ShowVerifyKey()
		if err != nil {
			return err
		}
		fmt.Println(vk)
	case sign:
		if fs.NArg() != 1 {
			usage()
			return flag.ErrHelp
		}
		opts := signengine.SignOptions{Comment: *comment, Embedded: *embed}
		if err := f.Sign(fs.Arg(0), opts, passphrase.Terminal{Fd: fd}); err != nil {
			return err
		}
	case verify:
		if fs.NArg() != 1 {
			usage()
			return flag.ErrHelp
		}
		result, err := f.Verify(fs.Arg(0))
		if err != nil {
			return err
		}
		renderVerifyResult(result)
	case trustList:
		substring := ""
		if fs.NArg() == 1 {
			substring = fs.Arg(0)
		}
		res, err := f.TrustList(substring)
		if err != nil {
			return err
		}
		if res.Unsigned {
			log.Warn("trust store signature is absent; list is unverified")
		}
		for _, k := range res.Keys {
			fmt.Println(k)
		}
	case trustAdd:
		if fs.NArg() != 1 {
			usage()
			return flag.ErrHelp
		}
		if err := f.TrustAdd(fs.Arg(0), passphrase.Terminal{Fd: fd}); err != nil {
			return err
		}
	case trustRemove:
		if fs.NArg() != 1 {
			usage()
			return flag.ErrHelp
		}
		if err := f.TrustRemove(fs.Arg(0), passphrase.Terminal{Fd: fd}); err != nil {
			return err
		}
	}
	return nil
}

func renderVerifyResult(result signengine.VerifyResult) {
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
}
