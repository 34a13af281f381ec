// myoctl is a small command line frontend for the Myo client stack:
// scan for armbands, dump device info, vibrate, stream samples.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/myolinux/bled112"
	"github.com/myolinux/bled112/bgapi"
	"github.com/myolinux/bled112/cache"
	"github.com/myolinux/bled112/gatt"
	"github.com/myolinux/bled112/myo"
	"github.com/myolinux/bled112/serial"
)

func main() {
	app := cli.NewApp()
	app.Name = "myoctl"
	app.Usage = "talk to a Myo armband through a BLED112 dongle"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "port, p",
			Value: "/dev/ttyACM0",
			Usage: "character device of the BLED112 dongle",
		},
		cli.StringFlag{
			Name:  "addr, a",
			Usage: "device address; the first Myo found is used when empty",
		},
		cli.IntFlag{
			Name:  "scan-max",
			Value: 64,
			Usage: "advertisements to examine before giving up, 0 for no limit",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "log every frame",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "scan",
			Usage:  "list nearby Myo devices",
			Action: scan,
		},
		{
			Name:   "info",
			Usage:  "print device info and firmware version",
			Action: info,
		},
		{
			Name:  "vibrate",
			Usage: "vibrate the device",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "length", Value: int(myo.VibrationMedium), Usage: "1 short, 2 medium, 3 long"},
			},
			Action: vibrate,
		},
		{
			Name:  "stream",
			Usage: "stream EMG and IMU samples to stdout",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "emg"},
				cli.BoolFlag{Name: "imu"},
				cli.IntFlag{Name: "count", Value: 0, Usage: "stop after this many notifications, 0 for unlimited"},
			},
			Action: stream,
		},
		{
			Name:  "characteristics",
			Usage: "enumerate the GATT database and cache it",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "cache", Value: "characteristics.json", Usage: "cache file"},
			},
			Action: characteristics,
		},
	}

	if err := app.Run(os.Args); err != nil {
		bled112.GetLogger().Error(err)
		os.Exit(1)
	}
}

// open builds the stack bottom-up: serial transport, BGAPI session, GATT
// session, Myo session.
func open(ctx *cli.Context) (*myo.Client, *gatt.Client, *bgapi.Client, error) {
	if ctx.GlobalBool("debug") {
		bled112.SetLogLevelMax()
	}

	opts := serial.DefaultOptions()
	opts.PortName = ctx.GlobalString("port")

	transport, err := serial.Open(opts)
	if err != nil {
		return nil, nil, nil, err
	}

	bg := bgapi.NewClient(transport)
	gc := gatt.NewClient(bg, gatt.WithScanPolicy(gatt.ScanPolicy{
		MaxEvents: ctx.GlobalInt("scan-max"),
	}))
	return myo.NewClient(gc), gc, bg, nil
}

func connect(ctx *cli.Context, mc *myo.Client) error {
	if s := ctx.GlobalString("addr"); s != "" {
		return mc.ConnectString(s)
	}
	addr, err := mc.ConnectAny()
	if err != nil {
		return err
	}
	fmt.Printf("connected to %v\n", addr)
	return nil
}

func scan(ctx *cli.Context) error {
	mc, _, bg, err := open(ctx)
	if err != nil {
		return err
	}
	defer bg.Close()

	seen := map[bled112.Address]bool{}
	return mc.Discover(func(rssi int8, addr bled112.Address, data []byte) bool {
		if !seen[addr] {
			seen[addr] = true
			fmt.Printf("%v rssi=%v\n", addr, rssi)
		}
		return true
	})
}

func info(ctx *cli.Context) error {
	mc, _, bg, err := open(ctx)
	if err != nil {
		return err
	}
	defer bg.Close()

	if err := connect(ctx, mc); err != nil {
		return err
	}
	defer mc.Disconnect()

	name, err := mc.DeviceName()
	if err != nil {
		return err
	}
	inf, err := mc.Info()
	if err != nil {
		return err
	}
	fw, err := mc.FirmwareVersion()
	if err != nil {
		return err
	}

	fmt.Printf("name:     %s\n", name)
	fmt.Printf("serial:   % 0x\n", inf.SerialNumber)
	fmt.Printf("sku:      %v\n", inf.SKU)
	fmt.Printf("firmware: %v.%v.%v (hw rev %v)\n", fw.Major, fw.Minor, fw.Patch, fw.HardwareRev)
	return nil
}

func vibrate(ctx *cli.Context) error {
	mc, _, bg, err := open(ctx)
	if err != nil {
		return err
	}
	defer bg.Close()

	if err := connect(ctx, mc); err != nil {
		return err
	}
	defer mc.Disconnect()

	return mc.Vibrate(myo.Vibration(ctx.Int("length")))
}

func stream(ctx *cli.Context) error {
	mc, _, bg, err := open(ctx)
	if err != nil {
		return err
	}
	defer bg.Close()

	if err := connect(ctx, mc); err != nil {
		return err
	}
	defer mc.Disconnect()

	emgMode := myo.EmgNone
	if ctx.Bool("emg") {
		emgMode = myo.EmgRaw
		mc.OnEmg(func(s myo.EmgSample) {
			fmt.Printf("emg %v\n", s)
		})
	}
	imuMode := myo.ImuNone
	if ctx.Bool("imu") {
		imuMode = myo.ImuData
		mc.OnImu(func(o myo.OrientationSample, a myo.AccelerometerSample, g myo.GyroscopeSample) {
			fmt.Printf("imu o=%v a=%v g=%v\n", o, a, g)
		})
	}
	if emgMode == myo.EmgNone && imuMode == myo.ImuNone {
		return fmt.Errorf("nothing to stream, pass --emg and/or --imu")
	}

	if err := mc.SetMode(emgMode, imuMode, myo.ClassifierDisabled); err != nil {
		return err
	}

	for n := 0; ctx.Int("count") == 0 || n < ctx.Int("count"); n++ {
		if err := mc.Listen(); err != nil {
			return err
		}
	}
	return nil
}

func characteristics(ctx *cli.Context) error {
	mc, gc, bg, err := open(ctx)
	if err != nil {
		return err
	}
	defer bg.Close()

	if err := connect(ctx, mc); err != nil {
		return err
	}
	defer mc.Disconnect()

	chars, err := gc.Characteristics()
	if err != nil {
		return err
	}
	for uuid, handle := range chars {
		fmt.Printf("0x%04x %s\n", handle, uuid)
	}

	addr, err := gc.Address()
	if err != nil {
		return err
	}
	return cache.New(ctx.String("cache")).Store(addr, chars, true)
}
