// Command tlscore-selftest exercises the cipherbox, lrucache, and
// namedgroups packages end to end against in-process loopback pairs, as
// a manual verification surface. It is not a TLS server: no handshake,
// certificate, or transport-socket logic lives here, consistent with
// SPEC_FULL.md's non-goals.
package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tlscore/tlscore/cipherbox"
	"github.com/tlscore/tlscore/config"
	"github.com/tlscore/tlscore/internal/buildinfo"
	"github.com/tlscore/tlscore/lrucache"
	"github.com/tlscore/tlscore/namedgroups"
	"github.com/tlscore/tlscore/provider"
)

type scenarioAuthenticator struct {
	seq     uint64
	version cipherbox.ProtocolVersion
}

func (a *scenarioAuthenticator) SequenceNumber() uint64 { return a.seq }
func (a *scenarioAuthenticator) MACLen() int             { return 0 }

func (a *scenarioAuthenticator) AcquireAuthenticationBytes(ct cipherbox.ContentType, plaintextLen int) []byte {
	aad := make([]byte, 13)
	binary.BigEndian.PutUint64(aad[0:8], a.seq)
	aad[8] = byte(ct)
	binary.BigEndian.PutUint16(aad[9:11], uint16(a.version))
	binary.BigEndian.PutUint16(aad[11:13], uint16(plaintextLen))
	a.seq++
	return aad
}

func runSelftest(logger *zap.Logger) error {
	if err := scenarioS1(); err != nil {
		return fmt.Errorf("S1 AEAD round-trip: %w", err)
	}
	logger.Info("S1 AEAD round-trip: pass")

	if err := scenarioS2(); err != nil {
		return fmt.Errorf("S2 CBC padding shape: %w", err)
	}
	logger.Info("S2 CBC padding shape: pass")

	if err := scenarioS5(); err != nil {
		return fmt.Errorf("S5 supported-groups codec: %w", err)
	}
	logger.Info("S5 supported-groups codec: pass")

	if err := scenarioS6(); err != nil {
		return fmt.Errorf("S6 cache under pressure: %w", err)
	}
	logger.Info("S6 cache under pressure: pass")

	return nil
}

func scenarioS1() error {
	key := make([]byte, 16)
	fixedIV := make([]byte, 4)
	prov := provider.NewStdlibProvider()
	rnd := provider.CryptoRandSource{}

	enc, err := cipherbox.NewCipherBox(cipherbox.VersionTLS12, cipherbox.CipherAES128GCM, key, fixedIV, rnd, cipherbox.DirectionEncrypt, prov, nil)
	if err != nil {
		return err
	}
	dec, err := cipherbox.NewCipherBox(cipherbox.VersionTLS12, cipherbox.CipherAES128GCM, key, fixedIV, rnd, cipherbox.DirectionDecrypt, prov, nil)
	if err != nil {
		return err
	}

	encAuth := &scenarioAuthenticator{seq: 1, version: cipherbox.VersionTLS12}
	plain := []byte("hello")
	explicit, err := enc.CreateExplicitNonce(encAuth, cipherbox.ContentTypeApplicationData, len(plain))
	if err != nil {
		return err
	}
	ct, err := enc.Encrypt(plain)
	if err != nil {
		return err
	}
	wire := append(append([]byte(nil), explicit...), ct...)

	decAuth := &scenarioAuthenticator{seq: 1, version: cipherbox.VersionTLS12}
	body, err := dec.ApplyExplicitNonce(decAuth, cipherbox.ContentTypeApplicationData, wire)
	if err != nil {
		return err
	}
	out, err := dec.Decrypt(body, 0)
	if err != nil {
		return err
	}
	if string(out) != "hello" {
		return fmt.Errorf("round-trip mismatch: got %q", out)
	}
	return nil
}

func scenarioS2() error {
	plainPlusMAC := append([]byte("abc"), make([]byte, 20)...)
	key := make([]byte, 16)
	iv := make([]byte, 16)
	prov := provider.NewStdlibProvider()
	rnd := provider.CryptoRandSource{}
	enc, err := cipherbox.NewCipherBox(cipherbox.VersionTLS10, cipherbox.CipherAES128CBC, key, iv, rnd, cipherbox.DirectionEncrypt, prov, nil)
	if err != nil {
		return err
	}
	dec, err := cipherbox.NewCipherBox(cipherbox.VersionTLS10, cipherbox.CipherAES128CBC, key, iv, rnd, cipherbox.DirectionDecrypt, prov, nil)
	if err != nil {
		return err
	}
	ct, err := enc.Encrypt(plainPlusMAC)
	if err != nil {
		return err
	}
	if len(ct)%16 != 0 {
		return fmt.Errorf("ciphertext length %d not block-aligned", len(ct))
	}
	out, err := dec.Decrypt(ct, 20)
	if err != nil {
		return err
	}
	if len(out) != len(plainPlusMAC) {
		return fmt.Errorf("decrypted length mismatch: got %d want %d", len(out), len(plainPlusMAC))
	}
	return nil
}

func scenarioS5() error {
	ext := namedgroups.SupportedGroupsExtension{IDs: []uint16{23, 24, 25}}
	wire := ext.Marshal()
	want := []byte{0x00, 0x06, 0x00, 0x06, 0x00, 0x17, 0x00, 0x18, 0x00, 0x19}
	if len(wire) != len(want) {
		return fmt.Errorf("wire length mismatch")
	}
	for i := range want {
		if wire[i] != want[i] {
			return fmt.Errorf("wire byte %d mismatch: got %02x want %02x", i, wire[i], want[i])
		}
	}
	parsed, err := namedgroups.Parse(wire)
	if err != nil {
		return err
	}
	if len(parsed.IDs) != 3 {
		return fmt.Errorf("parsed wrong number of ids")
	}
	return nil
}

func scenarioS6() error {
	c := lrucache.NewEvictableCache[int, int](1000)
	for i := 0; i < 2000; i++ {
		c.Put(i, i)
	}
	if c.Size() > 1000 {
		return fmt.Errorf("size %d exceeds capacity", c.Size())
	}
	c.NotifyPressure(0.5)
	if c.Size() > 1000 {
		return fmt.Errorf("size %d exceeds capacity after pressure", c.Size())
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "tlscore-selftest",
		Short: "Exercise the cipherbox, lrucache, and namedgroups packages end to end",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				info := buildinfo.Read()
				fmt.Printf("tlscore-selftest %s (%s, %s)\n", info.Version, info.Commit, info.GoVersion)
				return nil
			}
			return cmd.Help()
		},
	}
	root.Flags().BoolVar(&showVersion, "version", false, "print build version and exit")

	var flagPreferredGroups string
	var flagFIPSMode bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run scenarios S1, S2, S5, and S6 against in-process fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flags.String("preferred_groups", "", "")
			flags.Bool("fips_mode", false, "")
			// Set (rather than default) the values given on the command
			// line, so config.Load sees them as changed and lets them
			// override the environment.
			if cmd.Flags().Changed("preferred-groups") {
				_ = flags.Set("preferred_groups", flagPreferredGroups)
			}
			if cmd.Flags().Changed("fips-mode") {
				_ = flags.Set("fips_mode", fmt.Sprint(flagFIPSMode))
			}

			cfg, err := config.Load(flags)
			if err != nil {
				return err
			}
			reg, err := namedgroups.NewRegistry(
				namedgroups.WithPreferredOrder(cfg.PreferredGroups()),
				namedgroups.WithFIPSMode(cfg.FIPSMode()),
			)
			if err != nil {
				return err
			}
			_ = reg // registry construction itself is part of the verification

			logger, _ := zap.NewDevelopment()
			defer logger.Sync()
			return runSelftest(logger)
		},
	}
	runCmd.Flags().StringVar(&flagPreferredGroups, "preferred-groups", "", "comma-separated curve preference override")
	runCmd.Flags().BoolVar(&flagFIPSMode, "fips-mode", false, "restrict to FIPS-approved curves")

	root.AddCommand(runCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
