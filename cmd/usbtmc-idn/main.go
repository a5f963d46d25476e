// usbtmc-idn opens a USBTMC instrument, prints its identification, and
// dumps its capabilities.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/kevmo314/go-usbtmc"
)

func main() {
	vidFlag := flag.String("vid", "", "vendor ID (e.g. 0x1313)")
	pidFlag := flag.String("pid", "", "product ID (e.g. 0x8078)")
	serial := flag.String("serial", "", "serial number to match (optional)")
	verbose := flag.Bool("v", false, "log protocol transfers")
	flag.Parse()

	if *vidFlag == "" || *pidFlag == "" {
		flag.Usage()
		os.Exit(2)
	}

	vid, err := strconv.ParseUint(*vidFlag, 0, 16)
	if err != nil {
		log.Fatalf("invalid vendor ID %q: %v", *vidFlag, err)
	}
	pid, err := strconv.ParseUint(*pidFlag, 0, 16)
	if err != nil {
		log.Fatalf("invalid product ID %q: %v", *pidFlag, err)
	}

	opts := []usbtmc.Option{usbtmc.WithSerial(*serial)}
	if *verbose {
		opts = append(opts, usbtmc.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}

	session, err := usbtmc.Open(uint16(vid), uint16(pid), opts...)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer session.Close()

	info, err := session.DeviceInfo()
	if err != nil {
		log.Fatalf("read device info: %v", err)
	}
	fmt.Printf("device:       %s\n", info.VidPid)
	fmt.Printf("manufacturer: %s\n", info.Manufacturer)
	fmt.Printf("product:      %s\n", info.Product)
	if info.SerialNumber != "" {
		fmt.Printf("serial:       %s\n", info.SerialNumber)
	}

	identification, err := session.Query("*IDN?\n")
	if err != nil {
		log.Fatalf("query *IDN?: %v", err)
	}
	fmt.Printf("*IDN?:        %s\n", identification)

	caps, err := session.Capabilities()
	if err != nil {
		log.Fatalf("read capabilities: %v", err)
	}
	fmt.Printf("\nUSBTMC version %s, USB488 version %s\n", caps.USBTMCVersion, caps.USB488Version)
	fmt.Printf("  indicator pulse:      %v\n", caps.SupportsIndicatorPulse)
	fmt.Printf("  talk only:            %v\n", caps.TalkOnly)
	fmt.Printf("  listen only:          %v\n", caps.ListenOnly)
	fmt.Printf("  termchar:             %v\n", caps.SupportsTermChar)
	fmt.Printf("  USB488.2:             %v\n", caps.Is488v2)
	fmt.Printf("  remote/local:         %v\n", caps.AcceptsRemoteLocal)
	fmt.Printf("  trigger:              %v\n", caps.AcceptsTrigger)
	fmt.Printf("  mandatory SCPI:       %v\n", caps.SupportsMandatorySCPI)
	fmt.Printf("  SR1 capable:          %v\n", caps.SR1Capable)
	fmt.Printf("  RL1 capable:          %v\n", caps.RL1Capable)
	fmt.Printf("  DT1 capable:          %v\n", caps.DT1Capable)
}
