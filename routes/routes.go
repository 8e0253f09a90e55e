package routes

import (
	"fmt"
	"net/http"
	"os"

	"bandhub/artists"
	"bandhub/middleware"
	"bandhub/ratelim"

	"github.com/julienschmidt/httprouter"
)

// ArtistsPrefix is where the artist router is mounted.
const ArtistsPrefix = "/artists"

// UploadsPath is the URL path uploaded pictures are served under.
const UploadsPath = "/profile-pics"

func AddArtistRoutes(router *httprouter.Router, h *artists.Handler, rateLimiter *ratelim.RateLimiter) {
	authenticate := middleware.Authenticate(h.Tokens)

	router.POST(ArtistsPrefix+"/signup", artists.Signup(h))
	router.POST(ArtistsPrefix+"/login", rateLimiter.Limit(artists.Login(h)))
	router.POST(ArtistsPrefix+"/upload-profile-pic", rateLimiter.Limit(artists.UploadPicture(h)))

	router.GET(ArtistsPrefix+"/:id", artists.GetArtistByID(h))
	router.GET(ArtistsPrefix+"/:id/qrcode", artists.GetArtistQRCode(h))

	router.PUT(ArtistsPrefix+"/:id", authenticate(artists.UpdateArtist(h)))
	router.PUT(ArtistsPrefix+"/:id/upload-profile-pic", authenticate(artists.UploadProfilePic(h)))
	router.PUT(ArtistsPrefix+"/:id/upload-banner-pic", authenticate(artists.UploadBannerPic(h)))
	router.PUT(ArtistsPrefix+"/:id/upcomingEvent", authenticate(artists.AddUpcomingEvent(h)))
	router.PUT(ArtistsPrefix+"/:id/song", authenticate(artists.AddSong(h)))

	router.DELETE(ArtistsPrefix+"/:id", authenticate(artists.DeleteArtistByID(h)))
	router.DELETE(ArtistsPrefix+"/:id/song/:songid", authenticate(artists.DeleteSong(h)))
	router.DELETE(ArtistsPrefix+"/:id/upcomingEvent/:eventid", authenticate(artists.DeleteUpcomingEvent(h)))
}

// filesOnly serves regular files and reports directories as missing, so
// uploaded filenames are never listed.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

func AddStaticRoutes(router *httprouter.Router, uploadDir string) {
	router.ServeFiles(UploadsPath+"/*filepath", filesOnly{fs: http.Dir(uploadDir)})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func AddUtilityRoutes(router *httprouter.Router) {
	router.GET("/health", Index)
}
