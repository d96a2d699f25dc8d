package cmd

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gridsight/internal/config"
	"gridsight/internal/model"
	"gridsight/pkg/str"
)

var createAdmin bool

var updateDBCommand = &cobra.Command{
	Use:   "updatedb",
	Short: "Update database tables",
	Run: func(cmd *cobra.Command, args []string) {
		conf, err := config.InitConfig(configFile)
		if err != nil {
			logrus.Fatal("initConfig error, ", err.Error())
		}

		db, err := model.InitDB(conf.DB)
		if err != nil {
			logrus.Fatal("failed to init database", err)
		}
		defer func() {
			sqlDb, _ := db.DB()
			sqlDb.Close()
		}()

		err = model.AutoMigrate(db)
		if err != nil {
			logrus.Fatal("failed to auto migrate database", err)
		} else {
			logrus.Infof("Database tables update successfully")
		}

		if createAdmin {
			if err := bootstrapAdmin(); err != nil {
				logrus.Fatal("failed to create admin user", err)
			}
		}
	},
}

func bootstrapAdmin() error {
	existing, err := model.GetUserByUsername("admin")
	if err != nil {
		return err
	}
	if existing != nil {
		logrus.Info("admin user already exists")
		return nil
	}

	password := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD"))
	if password == "" {
		password = str.RandString(16, str.Alphanumeric)
		logrus.Infof("generated admin password: %s", password)
	}
	return model.CreateUser(&model.User{
		Username: "admin",
		Password: str.Md5Str(password),
		IsAdmin:  true,
	})
}

func init() {
	updateDBCommand.Flags().BoolVarP(&createAdmin, "create-admin", "a", false, "Create the admin user if missing")
}
