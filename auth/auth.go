package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"wayfare/apperr"
	"wayfare/db"
	"wayfare/globals"
	"wayfare/middleware"
	"wayfare/models"
	"wayfare/user"
	"wayfare/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

type registerTravelerRequest struct {
	Email         string     `json:"email"`
	Password      string     `json:"password"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	BirthDate     *time.Time `json:"birth_date"`
	Accessibility bool       `json:"accessibility"`
	InterestedIn  []string   `json:"interested_in"`
}

type registerOrganizationRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	VatNumber string `json:"vat_number"`
	Website   string `json:"website"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func createUser(ctx context.Context, email, password string, roles []string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  string(hashed),
		Roles:     roles,
		CreatedAt: time.Now().UTC(),
	}
	result, err := db.UserCollection.InsertOne(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = result.InsertedID.(primitive.ObjectID)
	return u, nil
}

func issueToken(u *models.User) (string, error) {
	claims := &middleware.Claims{
		Email:  u.Email,
		UserID: u.ID.Hex(),
		Role:   u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

func validCredentials(email, password string) bool {
	return strings.Contains(email, "@") && len(password) >= 8
}

// POST /api/auth/register/traveler
func RegisterTraveler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body registerTravelerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validCredentials(body.Email, body.Password) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid email or password too short")
		return
	}
	for _, act := range body.InterestedIn {
		if _, ok := models.Activities[act]; !ok {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid activity name: "+act)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	u, err := createUser(ctx, body.Email, body.Password, []string{models.RoleTraveler})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "Email already registered")
			return
		}
		log.Printf("[auth] register traveler: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	traveler := &models.Traveler{
		UserID:        u.ID.Hex(),
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		BirthDate:     body.BirthDate,
		Accessibility: body.Accessibility,
		InterestedIn:  body.InterestedIn,
	}
	if _, err := db.TravelersCollection.InsertOne(ctx, traveler); err != nil {
		log.Printf("[auth] insert traveler profile: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	go sendSignupConfirmation(u.Email)

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": u.ID.Hex()})
}

// POST /api/auth/register/organization
func RegisterOrganization(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body registerOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validCredentials(body.Email, body.Password) || body.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid registration data")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	u, err := createUser(ctx, body.Email, body.Password, []string{models.RoleOrganization})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "Email already registered")
			return
		}
		log.Printf("[auth] register organization: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	org := &models.Organization{
		UserID:    u.ID.Hex(),
		Name:      body.Name,
		VatNumber: body.VatNumber,
		Website:   body.Website,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := db.OrganizationsCollection.InsertOne(ctx, org); err != nil {
		log.Printf("[auth] insert organization profile: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"id": u.ID.Hex()})
}

// POST /api/auth/login
func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	u, err := user.NewStore().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(body.Email)))
	if err != nil {
		if apperr.IsNotFound(err) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(body.Password)) != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := issueToken(u)
	if err != nil {
		log.Printf("[auth] sign token: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	now := time.Now().UTC()
	db.UserCollection.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{"last_login": now}})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token": token,
		"user": utils.M{
			"id":    u.ID.Hex(),
			"email": u.Email,
			"roles": u.Roles,
		},
	})
}
